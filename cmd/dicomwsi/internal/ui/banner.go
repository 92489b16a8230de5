// Package ui holds the dicomwsi CLI's presentation layer: the startup
// banner and table renderers shared by every subcommand.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

// BannerStyle colors the startup banner, the way the teacher CLI styles
// its own ASCII art with lipgloss rather than printing it raw.
var BannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00afaf")).
	Bold(true)

// SubtleStyle separates sections of multi-file output.
var SubtleStyle = lipgloss.NewStyle().Faint(true)

// PrintBanner writes the "DICOM WSI" ASCII banner to stderr.
func PrintBanner() {
	banner := figure.NewFigure("DICOM WSI", "banner3", true)
	fmt.Fprintln(os.Stderr, BannerStyle.Render(banner.String()))
	fmt.Fprintln(os.Stderr)
}
