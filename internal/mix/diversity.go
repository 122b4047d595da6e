package mix

import "github.com/tunemixapp/tunemix-engine/internal/domain"

// artist caps for diversity-constrained selection. Favorited songs earn
// their artist a second slot.
const (
	artistCap         = 1
	favoriteArtistCap = 2
)

// SelectDiverse converts a ranked list into a bounded, artist-diverse
// selection of at most limit songs.
//
// Pass 1 walks the ranking in order and admits a candidate only while its
// artist is under cap. Pass 2 relaxes the cap: if too few distinct artists
// exist to fill the limit, remaining ranked songs are appended in original
// order rather than returning a short list.
func SelectDiverse(ranked []RankedSong, favoriteIDs map[string]struct{}, limit int) []domain.Song {
	if limit <= 0 || len(ranked) == 0 {
		return nil
	}

	selected := make([]domain.Song, 0, limit)
	selectedIDs := make(map[string]struct{}, limit)
	artistCounts := make(map[int64]int)

	for _, candidate := range ranked {
		if len(selected) >= limit {
			break
		}
		maxPerArtist := artistCap
		if _, ok := favoriteIDs[candidate.Song.ID]; ok {
			maxPerArtist = favoriteArtistCap
		}
		if artistCounts[candidate.Song.ArtistID] >= maxPerArtist {
			continue
		}

		selected = append(selected, candidate.Song)
		selectedIDs[candidate.Song.ID] = struct{}{}
		artistCounts[candidate.Song.ArtistID]++
	}

	if len(selected) < limit {
		for _, candidate := range ranked {
			if len(selected) >= limit {
				break
			}
			if _, ok := selectedIDs[candidate.Song.ID]; ok {
				continue
			}
			selected = append(selected, candidate.Song)
			selectedIDs[candidate.Song.ID] = struct{}{}
		}
	}

	return selected
}
