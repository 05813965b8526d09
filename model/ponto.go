package model

import "time"

// Ponto 表示一首 ponto 音频。PlaylistID 为 nil 时表示未归属任何歌单
type Ponto struct {
	ID         string    `json:"id"`
	PlaylistID *string   `json:"playlist_id"`
	Titulo     string    `json:"titulo" validate:"required,max=255"`
	Compositor *string   `json:"compositor"`
	AudioURL   *string   `json:"audio_url"`
	Duracao    *int      `json:"duracao" validate:"omitempty,min=0"`
	CreatedAt  time.Time `json:"created_at"`
}

// PontoFilter narrows GET /api/pontos to one equality predicate on playlist_id.
type PontoFilter struct {
	PlaylistID *string
	Unassigned bool // playlist_id IS NULL
}

// Key identifies the filter in cache keys.
func (f PontoFilter) Key() string {
	switch {
	case f.Unassigned:
		return "null"
	case f.PlaylistID != nil:
		return *f.PlaylistID
	default:
		return "all"
	}
}

var pontoColumns = []patchColumn{
	{name: "playlist_id", kind: kindString},
	{name: "titulo", kind: kindString, required: true},
	{name: "compositor", kind: kindString},
	{name: "audio_url", kind: kindString},
	{name: "duracao", kind: kindInt},
}

// ParsePontoPatch builds a partial update from a decoded JSON object.
// An explicit null playlist_id detaches the ponto from its playlist.
func ParsePontoPatch(body map[string]RawJSON) (Patch, error) {
	return parsePatch(body, pontoColumns)
}
