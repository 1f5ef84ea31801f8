package discover

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tkohara/ccsm/internal/transcript"
)

// File is one transcript file found under the projects root.
type File struct {
	Path      string
	SessionID string // UUID stem of the filename
	Project   string // containing project directory name
	Mtime     int64
	Size      int64
}

// Scan walks root for transcript files with UUID filenames, newest first.
// Subagent transcripts and index files are not sessions and are skipped.
func Scan(root string) ([]File, error) {
	var files []File

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if filepath.Base(path) == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		base := filepath.Base(path)
		if strings.Contains(base, "sessions-index") {
			return nil
		}
		stem := strings.TrimSuffix(base, ".jsonl")
		if _, err := uuid.Parse(stem); err != nil {
			return nil
		}

		files = append(files, File{
			Path:      path,
			SessionID: stem,
			Project:   filepath.Base(filepath.Dir(path)),
			Mtime:     info.ModTime().Unix(),
			Size:      info.Size(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Mtime > files[j].Mtime
	})
	return files, nil
}

// FindSession locates the transcript for a session ID under root.
func FindSession(root, sessionID string) (File, bool, error) {
	files, err := Scan(root)
	if err != nil {
		return File{}, false, err
	}
	for _, f := range files {
		if f.SessionID == sessionID {
			return f, true, nil
		}
	}
	return File{}, false, nil
}

// Summarized pairs a discovered file with its folded session summary.
type Summarized struct {
	File    File
	Summary transcript.SessionSummary
}

// SummarizeAll summarizes every discovered file. Each file is an
// independent parse+fold, so they run concurrently; files that fail to
// open are dropped rather than failing the whole listing.
func SummarizeAll(files []File) []Summarized {
	results := make([]*Summarized, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			sum, err := transcript.SummarizeFile(f.Path)
			if err != nil {
				return nil
			}
			results[i] = &Summarized{File: f, Summary: sum}
			return nil
		})
	}
	g.Wait()

	out := make([]Summarized, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
