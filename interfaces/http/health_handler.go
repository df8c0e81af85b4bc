package http

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) IHealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports liveness plus database reachability.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
