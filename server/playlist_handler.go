package server

import (
	"net/http"

	"simpleink/model"

	"github.com/gorilla/mux"
)

const msgPlaylistNotFound = "Playlist não encontrada"

// playlistInput 是 POST /api/playlists 的请求体
type playlistInput struct {
	Titulo     string  `json:"titulo" validate:"required,max=255"`
	Subtitulo  *string `json:"subtitulo" validate:"omitempty,max=255"`
	Compositor *string `json:"compositor" validate:"omitempty,max=255"`
	ImagemURL  *string `json:"imagem_url" validate:"omitempty,max=1024"`
}

// ListPlaylistsHandler 返回所有歌单
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(r.Context())
	if err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, playlists)
}

// GetPlaylistHandler 返回单个歌单
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, playlist)
}

// CreatePlaylistHandler 创建歌单，返回 {id}
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var in playlistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}

	id, err := h.playlists.Create(r.Context(), &model.Playlist{
		Titulo:     in.Titulo,
		Subtitulo:  in.Subtitulo,
		Compositor: in.Compositor,
		ImagemURL:  in.ImagemURL,
	})
	if err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}

// UpdatePlaylistHandler 部分更新歌单
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body map[string]model.RawJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	patch, err := model.ParsePlaylistPatch(body)
	if err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	if err := h.playlists.Update(r.Context(), id, patch); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}

// DeletePlaylistHandler 删除歌单，其中的 pontos 保留但解除归属
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.playlists.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}

// FollowPlaylistHandler 关注歌单
func (h *APIHandler) FollowPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.playlists.Follow(r.Context(), id); err != nil {
		writeFailure(w, r, err, msgPlaylistNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}
