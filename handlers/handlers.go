package handlers

import (
	"errors"
	"log"
	"net/http"

	"jewelrydam/catalog"
	"jewelrydam/config"
	"jewelrydam/processing"
	"jewelrydam/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Response struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

var (
	// Predefined errors
	InvalidJSONResponse = Response{Error: "Invalid JSON body"}
	InternalResponse    = Response{Error: "Internal error"}
)

type Handlers struct {
	db          *gorm.DB
	catalog     *catalog.Service
	store       storage.ObjectStore
	reconciler  *processing.Reconciler
	tmpDir      string
	maxUploadMB int
}

func New(cfg *config.Config, db *gorm.DB, store storage.ObjectStore, svc *catalog.Service, reconciler *processing.Reconciler) *Handlers {
	return &Handlers{
		db:          db,
		catalog:     svc,
		store:       store,
		reconciler:  reconciler,
		tmpDir:      cfg.TmpDir,
		maxUploadMB: cfg.MaxUploadMB,
	}
}

// Store is the object store the handlers were built with
func (h *Handlers) Store() storage.ObjectStore {
	return h.store
}

// respondError maps catalog errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		validation catalog.ValidationError
		duplicate  *catalog.DuplicateError
		storeErr   *catalog.StoreError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, Response{Error: validation.Error()})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusBadRequest, Response{Error: duplicate.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
	case errors.As(err, &storeErr):
		log.Printf("%s %s, error: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to " + storeErr.Op, Details: storeErr.Err.Error()})
	default:
		log.Printf("%s %s, error: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, Response{Error: InternalResponse.Error, Details: err.Error()})
	}
}
