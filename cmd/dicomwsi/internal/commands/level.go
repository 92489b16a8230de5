package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/config"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/ui"
	"github.com/wsicore/dicomwsi/dicom"
)

// LevelCmd runs the Level Driver over one WSMIS instance and prints its
// tile geometry and metadata.
type LevelCmd struct {
	Path string `arg:"" optional:"" type:"existingfile" help:"WSMIS instance file path"`
}

// Run executes the level command.
func (c *LevelCmd) Run(cfg *config.GlobalConfig) error {
	ui.PrintBanner()
	logger := log.Default()

	path, err := resolvePath(c.Path, "WSMIS instance path")
	if err != nil {
		return err
	}

	logger.Info("reading WSMIS level", "path", path)
	lvl, err := dicom.ReadLevel(path)
	if err != nil {
		logParseError(logger, "level read failed", path, err)
		return err
	}
	logger.Info("level read complete",
		"frames", lvl.Frames, "tiles_across", lvl.TilesAcross, "tiles_down", lvl.TilesDown)

	fmt.Fprintln(os.Stdout, ui.RenderLevelTable(lvl))
	return nil
}
