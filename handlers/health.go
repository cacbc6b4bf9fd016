package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string  `json:"status"`
	Database  string  `json:"database"`
	Storage   string  `json:"storage"`
	FreeSpace *uint64 `json:"free_space,omitempty"`
}

type freeSpacer interface {
	GetFreeSpace() uint64
}

func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result := HealthResponse{Status: "ok", Database: "ok", Storage: "ok"}
	if sqlDB, err := h.db.DB(); err != nil {
		result.Database = err.Error()
	} else if err = sqlDB.PingContext(ctx); err != nil {
		result.Database = err.Error()
	}
	if err := h.store.Check(ctx); err != nil {
		result.Storage = err.Error()
	}
	if fs, ok := h.store.(freeSpacer); ok {
		free := fs.GetFreeSpace()
		result.FreeSpace = &free
	}
	status := http.StatusOK
	if result.Database != "ok" || result.Storage != "ok" {
		result.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
