package dicom

import (
	"strconv"
	"strings"

	"github.com/wsicore/dicomwsi/dicom/tag"
)

// Registered exact-match paths for the Level Driver (spec.md section
// 4.7, plus the [EXPANDED] additions noted below).
var (
	studyInstanceUID        = tag.NewPath(tag.New(0x0020, 0x000D))
	numberOfFrames          = tag.NewPath(tag.New(0x0028, 0x0008))
	rows                    = tag.NewPath(tag.New(0x0028, 0x0010))
	columns                 = tag.NewPath(tag.New(0x0028, 0x0011))
	totalPixelMatrixColumns = tag.NewPath(tag.New(0x0048, 0x0006))
	totalPixelMatrixRows    = tag.NewPath(tag.New(0x0048, 0x0007))
	opticalPathCodeValue    = tag.NewPath(tag.New(0x0048, 0x0105), tag.New(0x0022, 0x0019), tag.New(0x0008, 0x0100))

	// [EXPANDED] metadata passthroughs and series grouping (SPEC_FULL.md
	// section 4.7): informational fields that participate in no tile
	// table invariant.
	pixelSpacing              = tag.NewPath(tag.New(0x0028, 0x0030))
	samplesPerPixel           = tag.NewPath(tag.New(0x0028, 0x0002))
	photometricInterpretation = tag.NewPath(tag.New(0x0028, 0x0004))
	seriesInstanceUID         = tag.NewPath(tag.New(0x0020, 0x000E))
)

// overviewLensCodeValue is the literal Code Value identifying an
// overview/icon optical path. The comparison is done after trimming
// trailing spaces from both sides rather than relying on the CS value's
// even-length padding, so a producer that wrote an odd-length value
// before its own padding step still matches (spec.md section 9, Open
// Questions; resolved per SPEC_FULL.md section 8).
const overviewLensCodeValue = "A-00118 "

// TileFragment records where one encapsulated pixel-data tile fragment
// lives in the file.
type TileFragment struct {
	AbsoluteOffset int64
	Length         uint32
}

// Level is the result of running the Level Driver over one WSMIS
// instance: per-instance metadata plus the tile offset/length table.
type Level struct {
	ImageWidth, ImageHeight int64
	TileWidth, TileHeight   int
	TilesAcross, TilesDown  int
	Frames                  int
	Fingerprint             string
	IsOverview              bool
	Tiles                   []TileFragment

	// [EXPANDED] metadata passthroughs.
	PixelSpacingRow, PixelSpacingColumn float64
	SamplesPerPixel                     int
	PhotometricInterpretation           string
	SeriesInstanceUID                   string
}

// ReadLevel runs the Level Driver over filename, a single WSMIS
// instance, producing its geometry, fingerprint, overview flag, and
// per-fragment tile table (spec.md section 4.7).
func ReadLevel(filename string) (*Level, error) {
	p, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	for _, path := range []tag.Path{
		studyInstanceUID, numberOfFrames, rows, columns,
		totalPixelMatrixColumns, totalPixelMatrixRows, opticalPathCodeValue,
		pixelSpacing, samplesPerPixel, photometricInterpretation, seriesInstanceUID,
	} {
		if err := p.RegisterPath(path); err != nil {
			return nil, err
		}
	}

	lvl := &Level{}
	var declaredFrames int

	p.SetHandlers(func(path tag.Path, el Element, source *ValueSource) error {
		switch {
		case studyInstanceUID.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			lvl.Fingerprint = s

		case seriesInstanceUID.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			lvl.SeriesInstanceUID = s

		case numberOfFrames.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			n, convErr := strconv.Atoi(s)
			if convErr != nil {
				return newParseError(KindStructuralViolation, el.Tag, path,
					convErr)
			}
			declaredFrames = n

		case rows.Equals(path):
			v, err := readUint16(source)
			if err != nil {
				return err
			}
			lvl.TileHeight = int(v)

		case columns.Equals(path):
			v, err := readUint16(source)
			if err != nil {
				return err
			}
			lvl.TileWidth = int(v)

		case totalPixelMatrixColumns.Equals(path):
			v, err := readUint32Value(source)
			if err != nil {
				return err
			}
			lvl.ImageWidth = int64(v)

		case totalPixelMatrixRows.Equals(path):
			v, err := readUint32Value(source)
			if err != nil {
				return err
			}
			lvl.ImageHeight = int64(v)

		case opticalPathCodeValue.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			if strings.TrimRight(s, " ") == strings.TrimRight(overviewLensCodeValue, " ") {
				lvl.IsOverview = true
			}

		case pixelSpacing.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			row, col, ok := parsePixelSpacing(s)
			if ok {
				lvl.PixelSpacingRow, lvl.PixelSpacingColumn = row, col
			}

		case samplesPerPixel.Equals(path):
			v, err := readUint16(source)
			if err != nil {
				return err
			}
			lvl.SamplesPerPixel = int(v)

		case photometricInterpretation.Equals(path):
			s, err := readTrimmedString(source)
			if err != nil {
				return err
			}
			lvl.PhotometricInterpretation = s
		}
		return nil
	}, func(path tag.Path, absoluteOffset int64, length uint32) error {
		lvl.Tiles = append(lvl.Tiles, TileFragment{AbsoluteOffset: absoluteOffset, Length: length})
		return nil
	})

	if err := p.Parse(); err != nil {
		return nil, err
	}

	lvl.Frames = declaredFrames
	if lvl.TileWidth > 0 {
		lvl.TilesAcross = ceilDiv(lvl.ImageWidth, int64(lvl.TileWidth))
	}
	if lvl.TileHeight > 0 {
		lvl.TilesDown = ceilDiv(lvl.ImageHeight, int64(lvl.TileHeight))
	}
	if lvl.TilesAcross*lvl.TilesDown != lvl.Frames {
		return nil, newParseError(KindStructuralViolation, tag.Tag{}, tag.Path{},
			tileGeometryMismatch(lvl.TilesAcross, lvl.TilesDown, lvl.Frames))
	}

	return lvl, nil
}

func ceilDiv(a, b int64) int {
	if b == 0 {
		return 0
	}
	return int((a + b - 1) / b)
}

func readTrimmedString(source *ValueSource) (string, error) {
	raw, err := source.ReadAll()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), " "), nil
}

func readUint16(source *ValueSource) (uint16, error) {
	raw, err := source.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, newParseError(KindStructuralViolation, tag.Tag{}, tag.Path{}, errShortNumericValue)
	}
	return uint16(raw[0]) | uint16(raw[1])<<8, nil
}

func readUint32Value(source *ValueSource) (uint32, error) {
	raw, err := source.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(raw) < 4 {
		return 0, newParseError(KindStructuralViolation, tag.Tag{}, tag.Path{}, errShortNumericValue)
	}
	return uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24, nil
}

// parsePixelSpacing decodes a DS value "row\column" in millimeters.
func parsePixelSpacing(s string) (row, col float64, ok bool) {
	parts := strings.SplitN(s, `\`, 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	r, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	c, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return r, c, true
}

type tileGeometryErr struct {
	tilesAcross, tilesDown, frames int
}

func (e *tileGeometryErr) Error() string {
	return "tile geometry " + strconv.Itoa(e.tilesAcross) + "x" + strconv.Itoa(e.tilesDown) +
		" does not match declared frame count " + strconv.Itoa(e.frames)
}

func tileGeometryMismatch(tilesAcross, tilesDown, frames int) error {
	return &tileGeometryErr{tilesAcross: tilesAcross, tilesDown: tilesDown, frames: frames}
}

var errShortNumericValue = &headerErr{msg: "numeric value shorter than its VR requires"}
