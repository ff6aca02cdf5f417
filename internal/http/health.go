package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklib/internal/database"
)

// HealthResponse reports overall status and the SQLite connection check.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
	Time     string `json:"time"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// Status pings the database and reports 200 or 503.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Version:  h.version,
		Time:     time.Now().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if err := h.pingDatabase(); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, resp)
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
