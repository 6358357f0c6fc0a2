package domain

// ProgressFunc reports batch download progress to the caller.
// Called repeatedly as songs finish: (1, 12), (2, 12), ...
type ProgressFunc func(done, total int)

// CacheResult summarizes one song of a batch pre-cache run.
type CacheResult struct {
	SongID string // Which song this result is for
	Path   string // Local audio path on success
	Err    error  // Non-nil if the download or ingestion failed
}
