package health

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
)

// StatsSource reports how many rooms and users the registry is carrying.
type StatsSource interface {
	Stats() (rooms, users int)
}

// Handler serves the liveness and readiness probes.
type Handler struct {
	registry    StatsSource
	snapshotDir string
}

// NewHandler builds the probe handler. snapshotDir may be empty when
// closing-room snapshots are disabled.
func NewHandler(registry StatsSource, snapshotDir string) *Handler {
	return &Handler{
		registry:    registry,
		snapshotDir: snapshotDir,
	}
}

// LivenessResponse is the body of a liveness probe answer.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the body of a readiness probe answer. Besides
// the per-dependency checks it reports the registry load, which makes
// the probe double as a cheap stats endpoint.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Rooms     int               `json:"rooms"`
	Users     int               `json:"users"`
	Timestamp string            `json:"timestamp"`
}

// Liveness answers GET /health/live with 200 whenever the process is
// up. No dependencies are consulted.
func (h *Handler) Liveness(c *gin.Context) {
	response := LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, response)
}

// Readiness answers GET /health/ready: 200 when the registry is
// reachable and the snapshot directory, when configured, is writable,
// 503 otherwise.
func (h *Handler) Readiness(c *gin.Context) {
	checks := make(map[string]string)
	allHealthy := true

	rooms, users := 0, 0
	if h.registry == nil {
		checks["registry"] = "unhealthy"
		allHealthy = false
	} else {
		rooms, users = h.registry.Stats()
		checks["registry"] = "healthy"
	}

	// Check the snapshot directory (if configured)
	if h.snapshotDir != "" {
		snapStatus := h.checkSnapshotDir(c.Request.Context())
		checks["snapshot_dir"] = snapStatus
		if snapStatus != "healthy" {
			allHealthy = false
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	response := ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Rooms:     rooms,
		Users:     users,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(statusCode, response)
}

// checkSnapshotDir probes the directory with a throwaway write.
func (h *Handler) checkSnapshotDir(ctx context.Context) string {
	probe := filepath.Join(h.snapshotDir, ".health-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		logging.Error(ctx, "Snapshot directory health check failed", zap.Error(err))
		return "unhealthy"
	}
	_ = os.Remove(probe)

	return "healthy"
}
