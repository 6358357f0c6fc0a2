package domain

// SearchResults groups matches by entity type, best match first within
// each group.
type SearchResults struct {
	Songs     []Song
	Albums    []Album
	Artists   []Artist
	Playlists []Playlist
}

// Empty reports whether the result holds no matches at all
func (r *SearchResults) Empty() bool {
	return r == nil ||
		len(r.Songs) == 0 && len(r.Albums) == 0 &&
			len(r.Artists) == 0 && len(r.Playlists) == 0
}

// Count returns the total number of matches across all groups
func (r *SearchResults) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Songs) + len(r.Albums) + len(r.Artists) + len(r.Playlists)
}
