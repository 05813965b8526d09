package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simpleink/cache"
	"simpleink/config"
	"simpleink/core/auth"
	"simpleink/db"
	"simpleink/logger"
	"simpleink/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 注册所有路由并套上中间件
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	write := api.NewRoute().Subrouter()
	write.Use(h.AuthMiddleware)

	// 歌单
	api.HandleFunc("/playlists", h.ListPlaylistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", h.GetPlaylistHandler).Methods(http.MethodGet)
	write.HandleFunc("/playlists", h.CreatePlaylistHandler).Methods(http.MethodPost)
	write.HandleFunc("/playlists/{id}", h.UpdatePlaylistHandler).Methods(http.MethodPut)
	write.HandleFunc("/playlists/{id}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/follow", h.FollowPlaylistHandler).Methods(http.MethodPost)

	// pontos
	api.HandleFunc("/pontos", h.ListPontosHandler).Methods(http.MethodGet)
	api.HandleFunc("/pontos/{id}", h.GetPontoHandler).Methods(http.MethodGet)
	write.HandleFunc("/pontos", h.CreatePontoHandler).Methods(http.MethodPost)
	write.HandleFunc("/pontos/{id}", h.UpdatePontoHandler).Methods(http.MethodPut)
	write.HandleFunc("/pontos/{id}", h.DeletePontoHandler).Methods(http.MethodDelete)

	// história
	api.HandleFunc("/historia", h.LatestHistoriaHandler).Methods(http.MethodGet)
	api.HandleFunc("/historia/{id}", h.GetHistoriaHandler).Methods(http.MethodGet)
	write.HandleFunc("/historia", h.CreateHistoriaHandler).Methods(http.MethodPost)

	// 文件
	write.HandleFunc("/upload", h.UploadHandler).Methods(http.MethodPost)
	api.HandleFunc("/files/{bucket}/{path:.+}", h.FileHandler).Methods(http.MethodGet, http.MethodHead)

	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Rota não encontrada")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Método não permitido")
	})

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if spa := NewSPAHandler(h.cfg.WebDir); spa != nil {
		router.PathPrefix("/").Handler(spa)
	}

	var handler http.Handler = router
	handler = writeRateLimit(h.cfg.RateLimitRPM)(handler)
	handler = gzipMiddleware(handler)
	handler = corsMiddleware(h.cfg.CORSOrigin)(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// Start 初始化依赖并启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅关闭
func Start(cfg *config.Config) error {
	ctx := context.Background()

	pool, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	store := cache.New(cfg)
	defer store.Close()

	files, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	authenticator, err := auth.NewAuthenticator(cfg)
	if err != nil {
		return err
	}

	deps, err := NewRepositories(pool, store)
	if err != nil {
		return err
	}
	deps.Files = files
	deps.Auth = authenticator

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           NewRouter(NewAPIHandler(cfg, deps)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr), logger.Bool("authRequired", cfg.AuthRequired))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-stop:
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
