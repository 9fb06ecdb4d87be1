package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	uncPrefixes = []string{`\\\\?\`, `\\?\`}

	driveBackslash = regexp.MustCompile(`^([A-Za-z]):\\`)
	driveSlash     = regexp.MustCompile(`^([A-Za-z]):/`)
	projectsDir    = regexp.MustCompile(`[/\\]projects[/\\]([^/\\]+)[/\\]`)
	dashRun        = regexp.MustCompile(`-{2,}`)
)

// HashProjectPath turns a filesystem path into the directory name used to
// namespace per-project state. The result must stay stable across releases:
// changing it orphans every stored snapshot.
//
//	/Users/name/project     -> -Users-name-project
//	C:\Users\name\project   -> C--Users-name-project
//
// An empty path is a programming error and panics.
func HashProjectPath(path string) string {
	if path == "" {
		panic("storage: HashProjectPath called with empty path")
	}

	result := canonicalize(path)

	for _, prefix := range uncPrefixes {
		if strings.HasPrefix(result, prefix) {
			result = strings.TrimLeft(result[len(prefix):], `\`)
			break
		}
	}

	hasDrive := false
	switch {
	case driveBackslash.MatchString(result):
		hasDrive = true
		result = driveBackslash.ReplaceAllString(result, "${1}--")
		result = strings.ReplaceAll(result, `\`, "-")
	case driveSlash.MatchString(result):
		hasDrive = true
		result = driveSlash.ReplaceAllString(result, "${1}--")
		result = strings.ReplaceAll(result, "/", "-")
	default:
		result = strings.NewReplacer(`\`, "-", "/", "-", ":", "-").Replace(result)
	}

	result = strings.TrimRight(result, "-")

	if hasDrive && len(result) >= 3 {
		prefix, rest := result[:3], result[3:]
		rest = strings.TrimLeft(collapseDashes(rest), "-")
		return strings.TrimRight(prefix+rest, "-")
	}
	return collapseDashes(result)
}

// canonicalize resolves path through the working directory and symlinks,
// falling back to the raw string when the path does not exist.
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return path
	}
	return resolved
}

func collapseDashes(s string) string {
	return dashRun.ReplaceAllString(s, "-")
}

// ProjectIDFromTranscript extracts <id> from a transcript path of the form
// .../projects/<id>/<session>.jsonl.
func ProjectIDFromTranscript(transcriptPath string) (string, bool) {
	m := projectsDir.FindStringSubmatch(transcriptPath)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ResolveProjectID picks the project id for a render. The host's own
// directory name (taken from the transcript path) wins, then the hash of
// projectDir, then the hash of the working directory.
func ResolveProjectID(transcriptPath, projectDir string) string {
	if transcriptPath != "" {
		if id, ok := ProjectIDFromTranscript(transcriptPath); ok {
			return id
		}
	}
	if projectDir != "" {
		return HashProjectPath(projectDir)
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return HashProjectPath(wd)
	}
	return HashProjectPath(".")
}
