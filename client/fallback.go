package client

import (
	"time"

	"simpleink/model"
)

// Fallback supplies rows for a read the API could not answer. ok is false when
// it has nothing for that read, in which case the transport error is returned.
type Fallback interface {
	Rows(table string, filters map[string]string) (data any, ok bool)
}

// FallbackFunc adapts a function to Fallback.
type FallbackFunc func(table string, filters map[string]string) (any, bool)

func (f FallbackFunc) Rows(table string, filters map[string]string) (any, bool) {
	return f(table, filters)
}

// SampleData is a static catalogue used to keep a UI populated while the
// backend is down.
type SampleData struct {
	Playlists []model.Playlist
	Pontos    []model.Ponto
}

func strPtr(s string) *string { return &s }

// DefaultSampleData returns the demo catalogue: three playlists and three pontos.
func DefaultSampleData(now time.Time) *SampleData {
	playlist := func(id, titulo, compositor, img string, followers, downloads int) model.Playlist {
		return model.Playlist{
			ID:           id,
			Titulo:       titulo,
			Subtitulo:    strPtr("Tradicional"),
			Compositor:   strPtr(compositor),
			ImagemURL:    strPtr("https://images.unsplash.com/" + img + "?w=800&auto=format&fit=crop&q=60"),
			NumFollowers: followers,
			NumDownloads: downloads,
			CreatedAt:    now,
		}
	}
	ponto := func(id, playlistID, titulo, audio string) model.Ponto {
		return model.Ponto{
			ID:         id,
			PlaylistID: strPtr(playlistID),
			Titulo:     titulo,
			Compositor: strPtr("Tradicional"),
			AudioURL:   strPtr(audio),
			CreatedAt:  now,
		}
	}

	s := &SampleData{
		Playlists: []model.Playlist{
			playlist("1", "Pontos de Preto Velho", "José da Silva", "photo-1534531173927-aeb928d54385", 120, 285),
			playlist("2", "Pontos de Caboclo", "Maria Santos", "photo-1599421498111-833c79b23af4", 89, 156),
			playlist("3", "Pontos de Oxóssi", "João Oliveira", "photo-1597855239105-23b13e4e5b43", 245, 412),
		},
		Pontos: []model.Ponto{
			ponto("1", "1", "Ponto de Pai Joaquim", "https://example.com/audio1.mp3"),
			ponto("2", "1", "Ponto de Vovó Maria Conga", "https://example.com/audio2.mp3"),
			ponto("3", "2", "Ponto de Caboclo Pena Branca", "https://example.com/audio3.mp3"),
		},
	}
	for i := range s.Playlists {
		for _, p := range s.Pontos {
			if p.PlaylistID != nil && *p.PlaylistID == s.Playlists[i].ID {
				s.Playlists[i].NumPontos++
			}
		}
	}
	return s
}

// Rows answers playlist and ponto reads. An "id" filter yields one row.
func (s *SampleData) Rows(table string, filters map[string]string) (any, bool) {
	switch table {
	case "playlists":
		rows := make([]model.Playlist, 0, len(s.Playlists))
		for _, p := range s.Playlists {
			if id, ok := filters["id"]; ok && p.ID != id {
				continue
			}
			rows = append(rows, p)
		}
		return single(rows, filters)
	case "pontos":
		rows := make([]model.Ponto, 0, len(s.Pontos))
		for _, p := range s.Pontos {
			if id, ok := filters["id"]; ok && p.ID != id {
				continue
			}
			if pid, ok := filters["playlist_id"]; ok && !matchesPlaylist(p.PlaylistID, pid) {
				continue
			}
			rows = append(rows, p)
		}
		return single(rows, filters)
	}
	return nil, false
}

func matchesPlaylist(have *string, want string) bool {
	if want == "null" {
		return have == nil
	}
	return have != nil && *have == want
}

func single[T any](rows []T, filters map[string]string) (any, bool) {
	if _, ok := filters["id"]; !ok {
		return rows, true
	}
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}
