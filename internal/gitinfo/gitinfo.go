// Package gitinfo collects repository state for the branch segment by
// shelling out to git.
package gitinfo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/statusline-pro/internal/store"
)

// ErrNotRepository is returned by a Runner when dir is not inside a work tree.
var ErrNotRepository = errors.New("not a git repository")

// Runner executes a git command in dir and returns its stdout.
// Tests replace it with a canned implementation.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// ExecRunner runs git as a real subprocess. Exit code 128 is reported as
// ErrNotRepository.
func ExecRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0", "LC_ALL=C")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Operation flags an in-progress multi-step git command.
type Operation struct {
	Rebasing   bool `json:"rebasing,omitempty"`
	Merging    bool `json:"merging,omitempty"`
	CherryPick bool `json:"cherry_pick,omitempty"`
	Bisecting  bool `json:"bisecting,omitempty"`
}

// Label returns a short uppercase marker, or "" when nothing is in progress.
func (o Operation) Label() string {
	switch {
	case o.Rebasing:
		return "REBASE"
	case o.Merging:
		return "MERGE"
	case o.CherryPick:
		return "PICK"
	case o.Bisecting:
		return "BISECT"
	}
	return ""
}

// Info is the repository state shown in the status line.
type Info struct {
	IsRepo      bool      `json:"is_repo"`
	GitDir      string    `json:"git_dir,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	Upstream    string    `json:"upstream,omitempty"`
	Detached    bool      `json:"detached,omitempty"`
	Ahead       int       `json:"ahead,omitempty"`
	Behind      int       `json:"behind,omitempty"`
	Staged      int       `json:"staged,omitempty"`
	Unstaged    int       `json:"unstaged,omitempty"`
	Untracked   int       `json:"untracked,omitempty"`
	Conflicted  int       `json:"conflicted,omitempty"`
	Stash       int       `json:"stash,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Operation   Operation `json:"operation"`
	CollectedAt time.Time `json:"collected_at,omitzero"`
}

// Clean reports whether the work tree has no changes of any kind.
func (i Info) Clean() bool {
	return i.Staged == 0 && i.Unstaged == 0 && i.Untracked == 0 && i.Conflicted == 0
}

// ShortCommit returns the first seven characters of the head commit.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// Collector gathers Info, optionally through a fingerprinted cache.
type Collector struct {
	Runner  Runner       // nil uses ExecRunner
	Cache   *store.Cache // nil disables caching
	TTL     time.Duration
	Timeout time.Duration
	Logger  *slog.Logger

	now func() time.Time
}

// Collect returns the state of the repository containing dir. A directory
// outside any repository yields Info{IsRepo: false} and a nil error.
func (c *Collector) Collect(ctx context.Context, dir string) (Info, error) {
	run := c.Runner
	if run == nil {
		run = ExecRunner
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out, err := run(ctx, dir, "rev-parse", "--absolute-git-dir")
	if errors.Is(err, ErrNotRepository) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, err
	}
	gitDir := strings.TrimSpace(out)

	var fp store.Fingerprint
	if c.Cache != nil {
		fp, err = store.FingerprintOf(filepath.Join(gitDir, "index"))
		if err != nil {
			logger.Debug("git index stat failed", "dir", gitDir, "error", err)
		}
		if info, ok := c.cached(dir, fp, logger); ok {
			return info, nil
		}
	}

	status, err := run(ctx, dir, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return Info{}, err
	}

	info := ParseStatus(status)
	info.IsRepo = true
	info.GitDir = gitDir
	info.Operation = DetectOperation(gitDir)
	info.Stash = countStash(gitDir)
	info.CollectedAt = c.clock()

	if c.Cache != nil {
		if data, err := json.Marshal(info); err == nil {
			if err := c.Cache.Put(store.KindGit, dir, fp, data); err != nil {
				logger.Warn("git cache write failed", "dir", dir, "error", err)
			}
		}
	}
	return info, nil
}

func (c *Collector) cached(dir string, fp store.Fingerprint, logger *slog.Logger) (Info, bool) {
	data, hit, err := c.Cache.Lookup(store.KindGit, dir, fp, c.TTL)
	if err != nil {
		logger.Warn("git cache read failed", "dir", dir, "error", err)
		return Info{}, false
	}
	if !hit {
		return Info{}, false
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		logger.Debug("discarding unreadable git cache entry", "dir", dir, "error", err)
		return Info{}, false
	}
	return info, true
}

func (c *Collector) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// ParseStatus reads `git status --porcelain=v2 --branch` output.
func ParseStatus(out string) Info {
	var info Info
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case '#':
			parseBranchHeader(&info, line)
		case '1', '2':
			// "1 XY ..." where X is the index and Y the work tree state.
			if len(line) < 4 {
				continue
			}
			if line[2] != '.' {
				info.Staged++
			}
			if line[3] != '.' {
				info.Unstaged++
			}
		case 'u':
			info.Conflicted++
		case '?':
			info.Untracked++
		}
	}
	return info
}

func parseBranchHeader(info *Info, line string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	switch fields[1] {
	case "branch.oid":
		if fields[2] != "(initial)" {
			info.Commit = fields[2]
		}
	case "branch.head":
		if fields[2] == "(detached)" {
			info.Detached = true
		} else {
			info.Branch = fields[2]
		}
	case "branch.upstream":
		info.Upstream = fields[2]
	case "branch.ab":
		if len(fields) < 4 {
			return
		}
		info.Ahead, _ = strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
		info.Behind, _ = strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
	}
	if info.Detached && info.Branch == "" && info.Commit != "" {
		info.Branch = "HEAD@" + info.ShortCommit()
	}
}

// DetectOperation checks gitDir for the marker files git leaves while a
// rebase, merge, cherry-pick or bisect is in progress.
func DetectOperation(gitDir string) Operation {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(gitDir, name))
		return err == nil
	}
	return Operation{
		Rebasing:   exists("rebase-apply") || exists("rebase-merge"),
		Merging:    exists("MERGE_HEAD"),
		CherryPick: exists("CHERRY_PICK_HEAD") || exists("REVERT_HEAD"),
		Bisecting:  exists("BISECT_LOG"),
	}
}

// countStash counts entries in the stash reflog.
func countStash(gitDir string) int {
	data, err := os.ReadFile(filepath.Join(gitDir, "logs", "refs", "stash"))
	if err != nil {
		return 0
	}
	return bytes.Count(data, []byte("\n"))
}
