package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/config"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/ui"
	"github.com/wsicore/dicomwsi/dicom"
)

// IndexCmd runs the Index Driver over a DICOMDIR file and prints the
// component instances it references.
type IndexCmd struct {
	Path  string `arg:"" optional:"" type:"existingfile" help:"DICOMDIR file path"`
	Table bool   `name:"table" help:"Render output as a table with record type"`
}

// Run executes the index command.
func (c *IndexCmd) Run(cfg *config.GlobalConfig) error {
	ui.PrintBanner()
	logger := log.Default()

	path, err := resolvePath(c.Path, "DICOMDIR path")
	if err != nil {
		return err
	}

	logger.Info("reading DICOMDIR index", "path", path)
	entries, err := dicom.ReadIndex(path, filepath.Dir(path))
	if err != nil {
		logParseError(logger, "index read failed", path, err)
		return err
	}
	logger.Info("index read complete", "entries", len(entries))

	if c.Table {
		fmt.Fprintln(os.Stdout, ui.RenderIndexTable(entries))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(os.Stdout, e.Path)
	}
	return nil
}

// logParseError logs a dicom.ParseError with its structured fields,
// mirroring the teacher's structured-field error logging via
// charmbracelet/log (SPEC_FULL.md section 7).
func logParseError(logger *log.Logger, msg, path string, err error) {
	var pe *dicom.ParseError
	if errors.As(err, &pe) {
		logger.Error(msg, "path", path, "kind", pe.Kind, "tag", pe.Tag, "error", err)
		return
	}
	logger.Error(msg, "path", path, "error", err)
}
