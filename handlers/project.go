package handlers

import (
	"net/http"

	"jewelrydam/catalog"

	"github.com/gin-gonic/gin"
)

type ProjectRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	ProjectDate    *string `json:"project_date"`
	ProjectDateAlt *string `json:"projectDate"`
}

func (h *Handlers) ProjectList(c *gin.Context) {
	projects, err := h.catalog.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handlers) ProjectCreate(c *gin.Context) {
	r := ProjectRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, InvalidJSONResponse)
		return
	}
	in := catalog.ProjectInput{}
	if r.Name != nil {
		in.Name = *r.Name
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if date := firstNonNil(r.ProjectDate, r.ProjectDateAlt); date != nil {
		in.ProjectDate = *date
	}
	project, err := h.catalog.CreateProject(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handlers) ProjectGet(c *gin.Context) {
	project, err := h.catalog.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handlers) ProjectUpdate(c *gin.Context) {
	r := ProjectRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, InvalidJSONResponse)
		return
	}
	project, err := h.catalog.UpdateProject(c.Request.Context(), c.Param("id"), catalog.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
		ProjectDate: firstNonNil(r.ProjectDate, r.ProjectDateAlt),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handlers) ProjectDelete(c *gin.Context) {
	if err := h.catalog.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Project deleted successfully"})
}

func (h *Handlers) ProjectAssets(c *gin.Context) {
	assets, err := h.catalog.ProjectAssets(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}
