package server

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse 是 /api/health 的返回体，不使用 {data, error} 信封
type HealthResponse struct {
	Status   string  `json:"status"`
	Uptime   float64 `json:"uptime"`
	Database string  `json:"database"`
}

// HealthHandler 存活探针。数据库不可用时仍返回 200，status 为 degraded
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Uptime:   time.Since(h.started).Seconds(),
		Database: "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.pool.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
	}
	dbOpenConnections.Set(float64(h.pool.Stats().OpenConnections))

	writeJSON(w, http.StatusOK, resp)
}
