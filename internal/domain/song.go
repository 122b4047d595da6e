package domain

// Song is a catalog entry supplied by the host's library index.
// The engine never mutates songs; it only reads identity and metadata.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	ArtistID int64  `json:"artist_id"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Genre    string `json:"genre,omitempty"`

	// DurationMs is the track length in milliseconds, 0 when unknown.
	DurationMs int64 `json:"duration_ms"`

	// DateAdded is when the song entered the library. Some sources report
	// epoch seconds, others epoch milliseconds; consumers must detect which.
	DateAdded int64 `json:"date_added"`
}

// SongsByID builds a lookup map over a catalog slice.
func SongsByID(songs []Song) map[string]Song {
	m := make(map[string]Song, len(songs))
	for _, s := range songs {
		m[s.ID] = s
	}
	return m
}
