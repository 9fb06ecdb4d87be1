package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanProject lists the transcripts directly under
// <claudeDir>/projects/<projectID>. Subagent transcripts are skipped.
func ScanProject(claudeDir, projectID string) ([]DiscoveredFile, error) {
	dir := filepath.Join(claudeDir, "projects", projectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	project := DecodeProjectName(projectID)
	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:       filepath.Join(dir, e.Name()),
			Project:    project,
			ProjectDir: projectID,
			SessionID:  strings.TrimSuffix(e.Name(), ".jsonl"),
		})
	}
	return files, nil
}

// LatestTranscript returns the most recently modified transcript of a
// project, or "" when there is none.
func LatestTranscript(claudeDir, projectID string) (string, error) {
	files, err := ScanProject(claudeDir, projectID)
	if err != nil {
		return "", err
	}
	var (
		best    string
		bestMod int64
	)
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best, bestMod = f.Path, mod
		}
	}
	return best, nil
}

// DecodeProjectName extracts a human-readable project name from the encoded directory name.
// Claude Code encodes absolute paths by replacing "/" with "-", so:
//
//	"-Users-tayloreernisse-projects-gitlore" -> "gitlore"
//	"-Users-tayloreernisse-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known path component ("projects", "repos", "src", "code", "home")
// and take everything after it. Falls back to the last non-empty segment.
func DecodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			name := strings.Join(parts[i+1:], "-")
			if name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}
