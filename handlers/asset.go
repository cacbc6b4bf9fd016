package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"jewelrydam/catalog"
	"jewelrydam/storage"
	"jewelrydam/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultThumbSize = 400
	maxThumbSize     = 2048
)

type AssetUpdateRequest struct {
	Name           *string         `json:"name"`
	Description    *string         `json:"description"`
	ProjectID      *string         `json:"project_id"`
	ProjectIDAlt   *string         `json:"projectId"`
	ProjectDate    *string         `json:"project_date"`
	ProjectDateAlt *string         `json:"projectDate"`
	ClientName     *string         `json:"client_name"`
	ClientNameAlt  *string         `json:"clientName"`
	Tags           json.RawMessage `json:"tags"` // "a, b" or ["a", "b"]
}

func (r *AssetUpdateRequest) patch() (catalog.AssetPatch, error) {
	p := catalog.AssetPatch{
		Name:        r.Name,
		Description: r.Description,
		ProjectID:   firstNonNil(r.ProjectID, r.ProjectIDAlt),
		ProjectDate: firstNonNil(r.ProjectDate, r.ProjectDateAlt),
		ClientName:  firstNonNil(r.ClientName, r.ClientNameAlt),
	}
	raw := bytes.TrimSpace(r.Tags)
	switch {
	case len(raw) == 0 || string(raw) == "null":
	case raw[0] == '[':
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			return p, catalog.ValidationError("Tags must be a string or an array of strings")
		}
		encoded, _ := json.Marshal(tags)
		s := string(encoded)
		p.Tags = &s
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return p, catalog.ValidationError("Tags must be a string or an array of strings")
		}
		p.Tags = &s
	}
	return p, nil
}

func (h *Handlers) AssetList(c *gin.Context) {
	assets, err := h.catalog.ListAssets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handlers) AssetRecent(c *gin.Context) {
	limit := utils.StringToInt(c.Query("limit"), catalog.DefaultRecentAssets)
	assets, err := h.catalog.RecentAssets(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handlers) AssetSearch(c *gin.Context) {
	assets, err := h.catalog.SearchAssets(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handlers) AssetGet(c *gin.Context) {
	asset, err := h.catalog.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handlers) AssetUpdate(c *gin.Context) {
	r := AssetUpdateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, InvalidJSONResponse)
		return
	}
	patch, err := r.patch()
	if err != nil {
		respondError(c, err)
		return
	}
	asset, err := h.catalog.UpdateAsset(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handlers) AssetDelete(c *gin.Context) {
	if err := h.catalog.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Asset deleted successfully"})
}

// AssetThumb serves a JPEG fitted into a size x size box
func (h *Handlers) AssetThumb(c *gin.Context) {
	size := utils.StringToInt(c.Query("size"), defaultThumbSize)
	if size <= 0 || size > maxThumbSize {
		c.JSON(http.StatusBadRequest, Response{Error: "Invalid thumbnail size"})
		return
	}
	asset, err := h.catalog.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var original bytes.Buffer
	if _, err = h.store.Load(c.Request.Context(), asset.GetPath(), &original); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{Error: "Image not found in object store"})
			return
		}
		log.Printf("Asset: %s, load error: %v", asset.ID, err)
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to load image", Details: err.Error()})
		return
	}
	var thumb bytes.Buffer
	if _, err = utils.CreateThumb(uint(size), &original, &thumb); err != nil {
		log.Printf("Asset: %s, thumbnail error: %v", asset.ID, err)
		c.JSON(http.StatusUnprocessableEntity, Response{Error: "Cannot create thumbnail", Details: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb.Bytes())
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
