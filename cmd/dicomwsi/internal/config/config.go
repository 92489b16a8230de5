// Package config holds the dicomwsi CLI's global flags, validated before
// the logger or any subcommand runs.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GlobalConfig carries the flags every subcommand shares, mirroring the
// teacher CLI's config.GlobalConfig embedded in its root command struct.
type GlobalConfig struct {
	LogLevel string `name:"log-level" default:"info" enum:"trace,debug,info,warn,error,fatal" help:"Logging verbosity" validate:"oneof=trace debug info warn error fatal"`
	Pretty   bool   `name:"pretty" default:"true" negatable:"" help:"Console log output (--no-pretty for compact logfmt)"`
	JSON     bool   `name:"json" help:"Structured JSON log output"`
	Debug    bool   `name:"debug" help:"Report caller location on every log line"`
}

var validate = validator.New()

// Validate checks the parsed flags against their struct tags before the
// logger is constructed, the way the teacher validates FHIR resources with
// go-playground/validator rather than hand-rolled if-chains.
func (c *GlobalConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
