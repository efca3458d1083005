// Package docref computes conventional paths for the external requirements
// documents tasks may reference. The core stores only the opaque document
// id; whether the file actually exists is this collaborator's problem, not
// the store's.
package docref

import (
	"os"
	"path/filepath"

	"github.com/humont/shikigami-sub001/internal/store"
)

// DefaultExt is the assumed document extension when none is configured.
const DefaultExt = "md"

// Path returns the conventional location of a referenced document:
// {docsDir}/{docID}.{ext}.
func Path(docsDir, docID, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Join(docsDir, docID+"."+ext)
}

// Orphan is a task whose document reference points at a missing file.
type Orphan struct {
	TaskID string
	DocID  string
	Path   string
}

// FindOrphans scans every live task with a document reference and reports
// the ones whose document file is missing on disk.
func FindOrphans(s *store.Store, docsDir, ext string) ([]Orphan, error) {
	tasks, err := s.List()
	if err != nil {
		return nil, err
	}

	var orphans []Orphan
	for _, t := range tasks {
		if t.DocID == "" {
			continue
		}
		p := Path(docsDir, t.DocID, ext)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			orphans = append(orphans, Orphan{TaskID: t.ID, DocID: t.DocID, Path: p})
		} else if err != nil {
			return nil, err
		}
	}
	return orphans, nil
}
