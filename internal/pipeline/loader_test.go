package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/statusline-pro/internal/storage"
)

func TestLoadSnapshots(t *testing.T) {
	root := t.TempDir()
	st := openStore(t, root)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := st.Update(payload(t, id, "", "/work/proj")); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(st.SessionsDir(), "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := storage.ScanProjects(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %d, want 4", len(files))
	}

	var calls atomic.Int64
	res := LoadSnapshots(files, func(current, total int) {
		calls.Add(1)
		if total != 4 {
			t.Errorf("total = %d", total)
		}
	})
	if res.TotalFiles != 4 || res.FileErrors != 1 || len(res.Snapshots) != 3 {
		t.Errorf("result = total %d errors %d loaded %d", res.TotalFiles, res.FileErrors, len(res.Snapshots))
	}
	if calls.Load() != 4 {
		t.Errorf("progress calls = %d", calls.Load())
	}
	for _, ls := range res.Snapshots {
		if ls.Snapshot.Meta.SessionID != ls.File.SessionID {
			t.Errorf("snapshot %q loaded for file %q", ls.Snapshot.Meta.SessionID, ls.File.SessionID)
		}
	}
}

func TestLoadSnapshots_Empty(t *testing.T) {
	if res := LoadSnapshots(nil, nil); res.TotalFiles != 0 || len(res.Snapshots) != 0 {
		t.Errorf("result = %+v", res)
	}
}
