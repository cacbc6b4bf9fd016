package handlers

import (
	"log"
	"net/http"
	"strings"

	"jewelrydam/processing"

	"github.com/gin-gonic/gin"
)

type ReconcileResponse struct {
	Report  processing.Report `json:"report"`
	Error   string            `json:"error,omitempty"`
	Details string            `json:"details,omitempty"`
}

type fileServer interface {
	Serve(path string, request *http.Request, writer http.ResponseWriter)
}

// ServesFiles reports whether the object store can serve blobs over /files
func (h *Handlers) ServesFiles() bool {
	_, ok := h.store.(fileServer)
	return ok
}

func (h *Handlers) OrphanList(c *gin.Context) {
	orphans, err := h.reconciler.ListOrphans(c.Request.Context())
	if err != nil {
		log.Printf("Orphan list error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to list orphan blobs", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, orphans)
}

func (h *Handlers) Reconcile(c *gin.Context) {
	report, err := h.reconciler.RunOnce(c.Request.Context())
	if err != nil {
		log.Printf("Reconcile error: %v", err)
		c.JSON(http.StatusInternalServerError, ReconcileResponse{Report: report, Error: "Reconciliation failed", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ReconcileResponse{Report: report})
}

// FileServe is the public URL endpoint of the disk backend
func (h *Handlers) FileServe(c *gin.Context) {
	fs, ok := h.store.(fileServer)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.Status(http.StatusNotFound)
		return
	}
	fs.Serve(path, c.Request, c.Writer)
}
