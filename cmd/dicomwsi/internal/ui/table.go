package ui

import (
	"fmt"

	"github.com/alexeyco/simpletable"
	"github.com/wsicore/dicomwsi/dicom"
)

// RenderIndexTable renders a DICOMDIR's resolved entries, path and record
// type side by side, the way the teacher renders dump output with
// alexeyco/simpletable rather than a hand-aligned text grid.
func RenderIndexTable(entries []dicom.IndexEntry) string {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: "RECORD TYPE"},
			{Align: simpletable.AlignLeft, Text: "PATH"},
		},
	}
	for _, e := range entries {
		recordType := e.RecordType
		if recordType == "" {
			recordType = "-"
		}
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: recordType},
			{Align: simpletable.AlignLeft, Text: e.Path},
		})
	}
	table.SetStyle(simpletable.StyleCompactLite)
	return table.String()
}

// RenderLevelTable renders one WSMIS level's geometry and metadata as a
// two-column key/value table.
func RenderLevelTable(lvl *dicom.Level) string {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: "FIELD"},
			{Align: simpletable.AlignLeft, Text: "VALUE"},
		},
	}
	rows := [][2]string{
		{"fingerprint", lvl.Fingerprint},
		{"series_instance_uid", lvl.SeriesInstanceUID},
		{"image_w", fmt.Sprintf("%d", lvl.ImageWidth)},
		{"image_h", fmt.Sprintf("%d", lvl.ImageHeight)},
		{"tile_w", fmt.Sprintf("%d", lvl.TileWidth)},
		{"tile_h", fmt.Sprintf("%d", lvl.TileHeight)},
		{"tiles_across", fmt.Sprintf("%d", lvl.TilesAcross)},
		{"tiles_down", fmt.Sprintf("%d", lvl.TilesDown)},
		{"frames", fmt.Sprintf("%d", lvl.Frames)},
		{"is_overview", fmt.Sprintf("%t", lvl.IsOverview)},
		{"samples_per_pixel", fmt.Sprintf("%d", lvl.SamplesPerPixel)},
		{"photometric_interpretation", lvl.PhotometricInterpretation},
		{"pixel_spacing_row_mm", fmt.Sprintf("%.4f", lvl.PixelSpacingRow)},
		{"pixel_spacing_col_mm", fmt.Sprintf("%.4f", lvl.PixelSpacingColumn)},
	}
	for _, r := range rows {
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: r[0]},
			{Align: simpletable.AlignLeft, Text: r[1]},
		})
	}
	table.SetStyle(simpletable.StyleCompactLite)
	return table.String()
}

// RenderScanTable renders a directory scan's per-file classification.
func RenderScanTable(rows [][3]string) string {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: "PATH"},
			{Align: simpletable.AlignLeft, Text: "KIND"},
			{Align: simpletable.AlignLeft, Text: "DETAIL"},
		},
	}
	for _, r := range rows {
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: r[0]},
			{Align: simpletable.AlignLeft, Text: r[1]},
			{Align: simpletable.AlignLeft, Text: r[2]},
		})
	}
	table.SetStyle(simpletable.StyleCompactLite)
	return table.String()
}
