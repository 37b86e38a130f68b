package config

import (
	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := layout.LookupProfile(c.Profile); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "profile")
	}
	if len(c.Render.Formats) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.formats must name at least one format")
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.formats")
	}
	if c.Render.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.dpi must be positive, got %d", c.Render.DPI)
	}
	if c.Manifest == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "manifest is required")
	}
	if c.Serve.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "serve.addr is required")
	}
	return nil
}
