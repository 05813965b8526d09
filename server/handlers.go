package server

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"simpleink/cache"
	"simpleink/config"
	"simpleink/core/auth"
	"simpleink/db"
	"simpleink/logger"
	"simpleink/model"
	"simpleink/repository"
	"simpleink/storage"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxJSONBody 限制 JSON 请求体大小
const maxJSONBody = 1 << 20

// APIHandler 处理所有 /api 请求
type APIHandler struct {
	cfg       *config.Config
	pool      *db.Pool
	playlists repository.PlaylistRepository
	pontos    repository.PontoRepository
	historia  repository.HistoriaRepository
	files     storage.Store
	auth      *auth.Authenticator
	validate  *validator.Validate
	started   time.Time
	now       func() time.Time
}

// Deps 是 APIHandler 依赖的组件
type Deps struct {
	Pool      *db.Pool
	Playlists repository.PlaylistRepository
	Pontos    repository.PontoRepository
	Historia  repository.HistoriaRepository
	Files     storage.Store
	Auth      *auth.Authenticator
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(cfg *config.Config, deps Deps) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		pool:      deps.Pool,
		playlists: deps.Playlists,
		pontos:    deps.Pontos,
		historia:  deps.Historia,
		files:     deps.Files,
		auth:      deps.Auth,
		validate:  newValidator(),
		started:   time.Now(),
		now:       time.Now,
	}
}

// NewRepositories wires the SQL and GORM repositories behind the cache.
func NewRepositories(pool *db.Pool, store cache.Store) (Deps, error) {
	gdb, err := db.OpenGorm(pool)
	if err != nil {
		return Deps{}, err
	}
	return Deps{
		Pool:      pool,
		Playlists: repository.NewCachedPlaylistRepository(repository.NewSQLPlaylistRepository(pool, nil), store, observeCache),
		Pontos:    repository.NewCachedPontoRepository(repository.NewSQLPontoRepository(pool, nil), store, observeCache),
		Historia:  repository.NewCachedHistoriaRepository(repository.NewGormHistoriaRepository(gdb, nil), store, observeCache),
	}, nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, model.OK(data))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.Fail(msg))
}

// writeFailure 把仓库层错误映射为 HTTP 状态码。notFound 是实体相关的 404 文案
func writeFailure(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *model.ValidationError
	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, model.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &vErrs):
		writeError(w, http.StatusBadRequest, describeValidation(vErrs))
	case errors.Is(err, errBadJSON):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("requestId", RequestID(r.Context())),
			logger.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, "campo '"+field+"' é obrigatório")
		case "max":
			parts = append(parts, "campo '"+field+"' excede o tamanho máximo")
		default:
			parts = append(parts, "campo '"+field+"' inválido")
		}
	}
	return strings.Join(parts, "; ")
}

var errBadJSON = errors.New("JSON inválido")

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return errBadJSON
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errBadJSON
	}
	return nil
}
