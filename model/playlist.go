package model

import "time"

// Playlist 表示一个歌单（一组 pontos）
type Playlist struct {
	ID           string    `json:"id"`
	Titulo       string    `json:"titulo" validate:"required,max=255"`
	Subtitulo    *string   `json:"subtitulo"`
	Compositor   *string   `json:"compositor"`
	ImagemURL    *string   `json:"imagem_url"`
	NumPontos    int       `json:"num_pontos"`
	NumFollowers int       `json:"num_followers"`
	NumDownloads int       `json:"num_downloads"`
	CreatedAt    time.Time `json:"created_at"`
}

// playlistColumns 是 PUT /api/playlists/{id} 允许修改的列，顺序固定
var playlistColumns = []patchColumn{
	{name: "titulo", kind: kindString, required: true},
	{name: "subtitulo", kind: kindString},
	{name: "imagem_url", kind: kindString},
	{name: "compositor", kind: kindString},
}

// ParsePlaylistPatch builds a partial update from a decoded JSON object.
// Unknown keys are ignored.
func ParsePlaylistPatch(body map[string]RawJSON) (Patch, error) {
	return parsePatch(body, playlistColumns)
}
