package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGenerate(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateOutlier(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceRoot) == "" {
		return errors.New("paths.source_root must be set")
	}
	if strings.TrimSpace(c.Paths.SplitPath) == "" {
		return errors.New("paths.split_path must be set")
	}
	if strings.TrimSpace(c.Paths.DestinationRoot) == "" {
		return errors.New("paths.destination_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateGenerate() error {
	if c.Generate.SamplesPerFile <= 0 {
		return fmt.Errorf("generate.samples_per_file must be positive, got %d", c.Generate.SamplesPerFile)
	}
	if c.Generate.Fold < 0 {
		return fmt.Errorf("generate.fold must not be negative, got %d", c.Generate.Fold)
	}
	if c.Generate.Workers < 0 {
		return fmt.Errorf("generate.workers must not be negative, got %d (0 runs inline)", c.Generate.Workers)
	}
	if c.Generate.MinFreeGiB < 0 {
		return fmt.Errorf("generate.min_free_gib must not be negative, got %d", c.Generate.MinFreeGiB)
	}
	return nil
}

func (c *Config) validateTransform() error {
	if len(c.Transform.TargetShape) == 0 {
		return errors.New("transform.target_shape must be set")
	}
	for _, dim := range c.Transform.TargetShape {
		if dim <= 0 {
			return fmt.Errorf("transform.target_shape dimensions must be positive, got %v", c.Transform.TargetShape)
		}
	}
	if c.Transform.LesionRate < 0 || c.Transform.LesionRate > 1 {
		return fmt.Errorf("transform.lesion_rate must be in [0, 1], got %v", c.Transform.LesionRate)
	}
	return nil
}

func (c *Config) validateOutlier() error {
	if !c.Outlier.Enabled {
		return nil
	}
	if c.Outlier.MinMean >= c.Outlier.MaxMean {
		return fmt.Errorf("outlier.min_mean (%v) must be below outlier.max_mean (%v)", c.Outlier.MinMean, c.Outlier.MaxMean)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
