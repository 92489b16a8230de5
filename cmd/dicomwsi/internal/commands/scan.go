package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/config"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/ui"
	"github.com/wsicore/dicomwsi/dicom"
)

// ScanCmd batch-classifies every *.dcm file under a directory as a
// DICOMDIR or a WSMIS instance, fanning the work out across a bounded
// worker pool the way the teacher's directory_reader.go parses a
// directory of DICOM files concurrently (SPEC_FULL.md section 5).
type ScanCmd struct {
	Dir     string `arg:"" type:"existingdir" help:"Directory to scan for .dcm files"`
	Workers int    `name:"workers" default:"0" help:"Worker pool size (0 = GOMAXPROCS)"`
}

type scanResult struct {
	path   string
	kind   string
	detail string
	err    error
}

// Run executes the scan command.
func (c *ScanCmd) Run(cfg *config.GlobalConfig) error {
	ui.PrintBanner()
	logger := log.Default()

	files, err := discoverDicomFiles(c.Dir)
	if err != nil {
		return fmt.Errorf("failed to discover DICOM files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("no .dcm files found", "dir", c.Dir)
		return nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger.Info("scanning directory", "dir", c.Dir, "files", len(files), "workers", workers)

	results := scanConcurrently(files, workers)

	var rows [][3]string
	var failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			logParseError(logger, "classification failed", r.path, r.err)
			rows = append(rows, [3]string{r.path, "unknown", r.err.Error()})
			continue
		}
		rows = append(rows, [3]string{r.path, r.kind, r.detail})
	}

	fmt.Fprintln(os.Stdout, ui.RenderScanTable(rows))
	logger.Info("scan complete", "files", len(files), "failed", failed)
	return nil
}

// discoverDicomFiles walks root and returns every path matching "*.dcm",
// case-insensitively on the base name — the same matching rule the
// teacher's discoverFiles applies.
func discoverDicomFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".dcm") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// scanConcurrently classifies each file across a fixed worker pool: each
// worker owns no shared parser state, only the classification function,
// consistent with SPEC_FULL.md section 5's "no shared mutable global
// state" carried from the core parser into the CLI's one concurrent
// consumer.
func scanConcurrently(files []string, workers int) []scanResult {
	jobs := make(chan string, len(files))
	out := make(chan scanResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- classifyFile(path)
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]scanResult, 0, len(files))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// classifyFile tries the Index Driver first, falling back to the Level
// Driver, the way SPEC_FULL.md section 6 describes the scan command's
// per-file classification.
func classifyFile(path string) scanResult {
	entries, err := dicom.ReadIndex(path, filepath.Dir(path))
	if err == nil && len(entries) > 0 {
		return scanResult{path: path, kind: "dicomdir", detail: fmt.Sprintf("%d entries", len(entries))}
	}

	lvl, err := dicom.ReadLevel(path)
	if err == nil {
		return scanResult{path: path, kind: "wsmis", detail: fmt.Sprintf("%d frames", lvl.Frames)}
	}
	return scanResult{path: path, err: err}
}
