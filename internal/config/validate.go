package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMedia() error {
	if c.Media.MaxDimension < 0 {
		return errors.New("media.max_dimension must be >= 0 (0 disables downscaling)")
	}
	if c.Media.JPEGQuality < 1 || c.Media.JPEGQuality > 100 {
		return errors.New("media.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateSampling() error {
	switch c.Sampling.Strategy {
	case "interval":
		if c.Sampling.Value <= 0 {
			return errors.New("sampling.value must be positive seconds for the interval strategy")
		}
	case "count":
		if c.Sampling.Value < 1 || c.Sampling.Value != math.Trunc(c.Sampling.Value) {
			return errors.New("sampling.value must be a positive integer for the count strategy")
		}
	default:
		return fmt.Errorf("sampling.strategy: unsupported value %q (want interval or count)", c.Sampling.Strategy)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 5 {
		return errors.New("llm.temperature must be between 0 and 5")
	}
	if c.LLM.MaxTemperature > 5 {
		return errors.New("llm.max_temperature must be <= 5")
	}
	return nil
}

func (c *Config) validateStream() error {
	if c.Stream.MinDetectLength < 0 {
		return errors.New("stream.min_detect_length must be >= 0")
	}
	switch c.Stream.JSONExtraction {
	case "greedy", "balanced":
		return nil
	default:
		return fmt.Errorf("stream.json_extraction: unsupported value %q (want greedy or balanced)", c.Stream.JSONExtraction)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "color":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
