package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"jewelrydam/catalog"
	"jewelrydam/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreatedAsset struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	URL         string          `json:"url"`
	TiffURL     *string         `json:"tiff_url"`
	ProjectID   *string         `json:"project_id"`
	ProjectName *string         `json:"project_name"`
	ProjectDate *datatypes.Date `json:"project_date"`
	ClientName  *string         `json:"client_name"`
}

type IngestResponse struct {
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Details string                `json:"details,omitempty"`
	Assets  []CreatedAsset        `json:"assets"`
	Failed  []catalog.FileFailure `json:"failed"`
}

// AssetCreate ingests a multipart batch of images into the catalog
func (h *Handlers) AssetCreate(c *gin.Context) {
	if h.maxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.maxUploadMB)<<20)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{Error: "Upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, Response{Error: "At least one image is required", Details: err.Error()})
		return
	}
	defer form.RemoveAll()

	files, err := h.stageFiles(c, formFiles(form, "images[]", "images"))
	if err != nil {
		log.Printf("Upload staging error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to store upload", Details: err.Error()})
		return
	}
	secondary, err := h.stageFiles(c, formFiles(form, "tiffs[]", "tiffs"))
	if err != nil {
		for i := range files {
			_ = files[i].Release()
		}
		log.Printf("Upload staging error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to store upload", Details: err.Error()})
		return
	}

	result, err := h.catalog.Ingest(c.Request.Context(), catalog.IngestRequest{
		Files:       files,
		Secondary:   secondary,
		ProjectID:   formValue(form, "projectId", "project_id"),
		ProjectName: formValue(form, "projectName", "project_name"),
		ProjectDate: formValue(form, "projectDate", "project_date"),
		ClientName:  formValue(form, "clientName", "client_name"),
	})
	var storeErr *catalog.StoreError
	if err != nil && errors.As(err, &storeErr) {
		// Partial outcomes stay visible to the caller
		c.JSON(http.StatusInternalServerError, IngestResponse{
			Error:   "Failed to create assets",
			Details: storeErr.Error(),
			Assets:  createdAssets(result.Assets),
			Failed:  result.Failed,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, IngestResponse{
		Message: "Assets created successfully",
		Assets:  createdAssets(result.Assets),
		Failed:  result.Failed,
	})
}

// stageFiles copies multipart parts to TMP_DIR, the catalog releases them when done
func (h *Handlers) stageFiles(c *gin.Context, headers []*multipart.FileHeader) ([]catalog.UploadFile, error) {
	files := make([]catalog.UploadFile, 0, len(headers))
	for _, fh := range headers {
		path := filepath.Join(h.tmpDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
		if err := c.SaveUploadedFile(fh, path); err != nil {
			_ = os.Remove(path)
			for i := range files {
				_ = files[i].Release()
			}
			return nil, err
		}
		files = append(files, catalog.UploadFile{
			Name:        filepath.Base(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
			Release: func() error {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			},
		})
	}
	return files, nil
}

func formFiles(form *multipart.Form, names ...string) []*multipart.FileHeader {
	var result []*multipart.FileHeader
	for _, name := range names {
		result = append(result, form.File[name]...)
	}
	return result
}

func formValue(form *multipart.Form, names ...string) string {
	for _, name := range names {
		if values := form.Value[name]; len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			return values[0]
		}
	}
	return ""
}

func createdAssets(assets []models.Asset) []CreatedAsset {
	result := make([]CreatedAsset, 0, len(assets))
	for _, a := range assets {
		result = append(result, CreatedAsset{
			ID:          a.ID,
			Name:        a.Name,
			URL:         a.PrimaryImageURL,
			TiffURL:     a.SecondaryImageURL,
			ProjectID:   a.ProjectID,
			ProjectName: a.ProjectName,
			ProjectDate: a.ProjectDate,
			ClientName:  a.ClientName,
		})
	}
	return result
}

func (h *Handlers) UploadLog(c *gin.Context) {
	entries, err := h.catalog.RecentUploadLog(c.Request.Context(), catalog.DefaultUploadLog)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
