package domain

import "time"

// MixKind identifies one of the generated playlists.
type MixKind string

const (
	// MixDaily is the flat, ranked daily playlist.
	MixDaily MixKind = "daily"
	// MixYour is the larger sectioned playlist (favorites / core / discovery).
	MixYour MixKind = "your"
)

// Mix is a generated playlist persisted as an ordered, deduplicated list of
// song ids. Ids-only persistence keeps the last mix displayable across
// restarts even before the next ranking pass runs.
type Mix struct {
	Kind        MixKind   `json:"kind"`
	SongIDs     []string  `json:"song_ids"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Resolve joins the persisted id list against a live catalog. Ids that no
// longer resolve are dropped; ordering is preserved.
func (m *Mix) Resolve(catalog []Song) []Song {
	byID := SongsByID(catalog)
	songs := make([]Song, 0, len(m.SongIDs))
	for _, id := range m.SongIDs {
		if s, ok := byID[id]; ok {
			songs = append(songs, s)
		}
	}
	return songs
}

// NewMix builds a mix from already-ordered songs, deduplicating by id while
// preserving first-seen order.
func NewMix(kind MixKind, songs []Song, generatedAt time.Time) *Mix {
	seen := make(map[string]struct{}, len(songs))
	ids := make([]string, 0, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		ids = append(ids, s.ID)
	}
	return &Mix{Kind: kind, SongIDs: ids, GeneratedAt: generatedAt}
}
