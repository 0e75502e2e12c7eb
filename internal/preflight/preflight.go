// Package preflight validates the environment before a run starts writing.
// A multi-hour generation pass should fail in the first second on a missing
// source tree or a nearly-full destination disk, not four hours in.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Result captures the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Checks describes the environment a run needs.
type Checks struct {
	SourceRoot      string
	SplitPath       string
	DestinationRoot string
	MinFreeGiB      int
}

// RunAll executes every applicable check and returns all results; callers
// abort when any result has Passed == false.
func RunAll(c Checks) []Result {
	results := []Result{
		CheckFileExists("split file", c.SplitPath),
		CheckDirectoryAccess("source root", c.SourceRoot, false),
		CheckDirectoryAccess("destination", c.DestinationRoot, true),
	}
	if c.MinFreeGiB > 0 {
		results = append(results, CheckDiskSpace("destination free space", c.DestinationRoot, c.MinFreeGiB))
	}
	return results
}

// Failed returns the first failing result, if any.
func Failed(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}

// CheckFileExists verifies path names an existing regular file.
func CheckFileExists(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies the directory exists and is readable and
// writable. When create is set, a missing directory is created first.
func CheckDirectoryAccess(name, path string, create bool) Result {
	if create {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least
// minFreeGiB available to the calling user.
func CheckDiskSpace(name, path string, minFreeGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeGiB := stat.Bavail * uint64(stat.Bsize) / (1 << 30)
	if freeGiB < uint64(minFreeGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%d GiB free, need %d GiB)", path, freeGiB, minFreeGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d GiB free)", path, freeGiB)}
}
