package server

import (
	"errors"
	"net/http"

	"simpleink/model"

	"github.com/gorilla/mux"
)

const msgHistoriaNotFound = "História não encontrada"

type historiaInput struct {
	Conteudo string `json:"conteudo" validate:"required"`
}

// LatestHistoriaHandler 返回最新的 história；没有内容时 data 为 null
func (h *APIHandler) LatestHistoriaHandler(w http.ResponseWriter, r *http.Request) {
	historia, err := h.historia.Latest(r.Context())
	if errors.Is(err, model.ErrNotFound) {
		writeData(w, nil)
		return
	}
	if err != nil {
		writeFailure(w, r, err, msgHistoriaNotFound)
		return
	}
	writeData(w, historia)
}

func (h *APIHandler) GetHistoriaHandler(w http.ResponseWriter, r *http.Request) {
	historia, err := h.historia.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err, msgHistoriaNotFound)
		return
	}
	writeData(w, historia)
}

// CreateHistoriaHandler 保存新版本，旧版本保留在表中
func (h *APIHandler) CreateHistoriaHandler(w http.ResponseWriter, r *http.Request) {
	var in historiaInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeFailure(w, r, err, msgHistoriaNotFound)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		writeFailure(w, r, err, msgHistoriaNotFound)
		return
	}
	id, err := h.historia.Create(r.Context(), &model.Historia{Conteudo: in.Conteudo})
	if err != nil {
		writeFailure(w, r, err, msgHistoriaNotFound)
		return
	}
	writeData(w, model.IDResult{ID: id})
}
