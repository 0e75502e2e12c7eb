package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"voxprep/internal/config"
	"voxprep/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger: stderr plus an append-only log file under
// the configured log directory. The returned cleanup closes the file.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	writers := []io.Writer{os.Stderr}
	cleanup := func() {}

	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		file, err := logging.OpenLogFile(cfg.Paths.LogDir, "voxprep.log")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, file)
		cleanup = func() { _ = file.Close() }
	}

	format := cfg.Logging.Format
	if format == "" || format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) {
			format = "console"
		}
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: format,
		Output: out,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return logger, cleanup, nil
}

// stdoutIsTerminal gates interactive-only output like progress bars.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
