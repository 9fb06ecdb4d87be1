package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/statusline-pro/internal/model"
	"github.com/theirongolddev/statusline-pro/internal/storage"
)

// LoadedSnapshot pairs a snapshot with where it was found.
type LoadedSnapshot struct {
	File     storage.SnapshotFile
	Snapshot *model.SessionSnapshot
}

// LoadResult holds the output of LoadSnapshots.
type LoadResult struct {
	Snapshots  []LoadedSnapshot
	TotalFiles int
	FileErrors int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadSnapshots reads the given snapshot files with a bounded worker pool.
// Unreadable files are counted and skipped. Input order is preserved.
func LoadSnapshots(files []storage.SnapshotFile, progressFn ProgressFunc) *LoadResult {
	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	loaded := make([]*model.SessionSnapshot, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for idx := range work {
				snap, err := storage.LoadFile(files[idx].Path)
				if err == nil {
					loaded[idx] = snap
				}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	for i, snap := range loaded {
		if snap == nil {
			result.FileErrors++
			continue
		}
		result.Snapshots = append(result.Snapshots, LoadedSnapshot{File: files[i], Snapshot: snap})
	}
	return result
}
