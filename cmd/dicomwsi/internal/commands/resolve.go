// Package commands implements the dicomwsi CLI's subcommands: index, level,
// and scan.
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// resolvePath returns path unchanged if non-empty, otherwise falls back to
// an interactive file-path prompt — the teacher CLI's own fallback for a
// command invoked with no positional argument, built on charmbracelet/huh.
func resolvePath(path, title string) (string, error) {
	if path != "" {
		return path, nil
	}

	var entered string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("a file path is required")
					}
					if _, err := os.Stat(s); err != nil {
						return fmt.Errorf("cannot read %s: %w", s, err)
					}
					return nil
				}).
				Value(&entered),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("interactive prompt failed: %w", err)
	}
	return entered, nil
}
