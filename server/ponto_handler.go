package server

import (
	"net/http"

	"simpleink/model"

	"github.com/gorilla/mux"
)

const msgPontoNotFound = "Ponto não encontrado"

type pontoInput struct {
	PlaylistID *string `json:"playlist_id"`
	Titulo     string  `json:"titulo" validate:"required,max=255"`
	Compositor *string `json:"compositor" validate:"omitempty,max=255"`
	AudioURL   *string `json:"audio_url" validate:"omitempty,max=1024"`
	Duracao    *int    `json:"duracao" validate:"omitempty,min=0"`
}

// pontoFilter 解析 ?playlist_id=，"null" 表示未归属任何歌单的 pontos，空值不过滤
func pontoFilter(r *http.Request) model.PontoFilter {
	id := r.URL.Query().Get("playlist_id")
	switch id {
	case "":
		return model.PontoFilter{}
	case "null":
		return model.PontoFilter{Unassigned: true}
	}
	return model.PontoFilter{PlaylistID: &id}
}

func (h *APIHandler) ListPontosHandler(w http.ResponseWriter, r *http.Request) {
	pontos, err := h.pontos.List(r.Context(), pontoFilter(r))
	if err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	writeData(w, pontos)
}

func (h *APIHandler) GetPontoHandler(w http.ResponseWriter, r *http.Request) {
	ponto, err := h.pontos.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	writeData(w, ponto)
}

func (h *APIHandler) CreatePontoHandler(w http.ResponseWriter, r *http.Request) {
	var in pontoInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}

	id, err := h.pontos.Create(r.Context(), &model.Ponto{
		PlaylistID: in.PlaylistID,
		Titulo:     in.Titulo,
		Compositor: in.Compositor,
		AudioURL:   in.AudioURL,
		Duracao:    in.Duracao,
	})
	if err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}

func (h *APIHandler) UpdatePontoHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body map[string]model.RawJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	patch, err := model.ParsePontoPatch(body)
	if err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	if err := h.pontos.Update(r.Context(), id, patch); err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}

func (h *APIHandler) DeletePontoHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.pontos.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, err, msgPontoNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}
