package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/source"
)

// SnapshotFile is a snapshot discovered on disk.
type SnapshotFile struct {
	Path      string
	ProjectID string
	Project   string // decoded display name
	SessionID string
	ModTime   time.Time
}

// ScanProjects discovers snapshot files for every project under root,
// most recently modified first.
func ScanProjects(root string) ([]SnapshotFile, error) {
	pattern := filepath.Join(root, "projects", "*", "statusline-pro", "sessions", "*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	files := make([]SnapshotFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(filepath.Join(root, "projects"), path)
		if err != nil {
			continue
		}
		projectID := strings.SplitN(rel, string(filepath.Separator), 2)[0]
		files = append(files, SnapshotFile{
			Path:      path,
			ProjectID: projectID,
			Project:   source.DecodeProjectName(projectID),
			SessionID: strings.TrimSuffix(filepath.Base(path), ".json"),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}
