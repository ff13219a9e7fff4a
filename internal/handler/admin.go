package handler

import (
	"net/http"
	"runtime"
	"time"

	"tcg-collection-api/internal/repository"
	"tcg-collection-api/internal/syncstate"
	"tcg-collection-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	repo      repository.Repository
	syncState syncstate.Store
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. syncState may be nil.
func NewAdminHandler(repo repository.Repository, syncState syncstate.Store) *AdminHandler {
	return &AdminHandler{
		repo:      repo,
		syncState: syncState,
		startTime: time.Now(),
	}
}

// GetStats handles GET {prefix}/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	// Catalog store stats
	if h.repo != nil {
		dbStats, err := h.repo.GetStats(ctx)
		if err == nil {
			dbStats["status"] = "connected"
			stats["database"] = dbStats
		} else {
			stats["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Sync state
	if h.syncState != nil {
		syncStats := map[string]interface{}{"backend": h.syncState.Backend()}
		if runs, err := h.syncState.Latest(ctx); err == nil {
			syncStats["runs"] = len(runs)
			syncStats["status"] = "connected"
		} else {
			syncStats["status"] = "error"
			syncStats["error"] = err.Error()
		}
		stats["sync_state"] = syncStats
	} else {
		stats["sync_state"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
