package dicom

import (
	"path/filepath"
	"strings"

	"github.com/wsicore/dicomwsi/dicom/tag"
)

// directoryRecordSequence and referencedFileID together name the one
// path the Index Driver cares about: Directory Record Sequence ->
// Referenced File ID (spec.md section 4.6).
var (
	directoryRecordSequence = tag.New(0x0004, 0x1220)
	referencedFileID        = tag.New(0x0004, 0x1500)
	referencedFilePath      = tag.NewPath(directoryRecordSequence, referencedFileID)

	// directoryRecordType is an [EXPANDED] addition: tagging each
	// resolved path with its record's CS type lets a caller distinguish
	// an IMAGE reference from a SERIES/STUDY/PATIENT one in a mixed
	// DICOMDIR without a data dictionary.
	directoryRecordType = tag.New(0x0004, 0x1430)
	recordTypePath      = tag.NewPath(directoryRecordSequence, directoryRecordType)
)

// IndexEntry is one component file referenced by a DICOMDIR record.
type IndexEntry struct {
	// Path is the file path joined from the dir passed to ReadIndex and
	// the backslash-normalized Referenced File ID value; it is absolute
	// only when dir is.
	Path string
	// RecordType is the raw CS value of DirectoryRecordType (0004,1430)
	// for the record this path came from, or "" if absent.
	RecordType string
}

// ReadIndex runs the Index Driver over filename, a DICOMDIR file, and
// returns the paths of every component instance it references, each
// joined onto dir (typically filename's own containing directory).
func ReadIndex(filename, dir string) ([]IndexEntry, error) {
	p, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	if err := p.RegisterPath(referencedFilePath); err != nil {
		return nil, err
	}
	if err := p.RegisterPath(recordTypePath); err != nil {
		return nil, err
	}

	var entries []IndexEntry
	var pendingType string

	p.SetHandlers(func(path tag.Path, el Element, source *ValueSource) error {
		switch {
		case recordTypePath.Equals(path):
			raw, err := source.ReadAll()
			if err != nil {
				return err
			}
			pendingType = strings.TrimRight(string(raw), " ")

		case referencedFilePath.Equals(path):
			raw, err := source.ReadAll()
			if err != nil {
				return err
			}
			rel := normalizeReferencedFileID(string(raw))
			entries = append(entries, IndexEntry{
				Path:       filepath.Join(dir, rel),
				RecordType: pendingType,
			})
			pendingType = ""
		}
		return nil
	}, nil)

	if err := p.Parse(); err != nil {
		return nil, err
	}
	return entries, nil
}

// normalizeReferencedFileID trims the CS/LO-style trailing pad space and
// replaces the DICOM path component separator (backslash) with a forward
// slash (spec.md section 4.6). Both a single-component and a
// multi-component value are handled identically since strings.ReplaceAll
// is a no-op when there is no separator to replace.
func normalizeReferencedFileID(raw string) string {
	trimmed := strings.TrimRight(raw, " ")
	return strings.ReplaceAll(trimmed, `\`, "/")
}
