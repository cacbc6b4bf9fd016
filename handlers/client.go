package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ClientRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) ClientList(c *gin.Context) {
	clients, err := h.catalog.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handlers) ClientCreate(c *gin.Context) {
	r := ClientRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, InvalidJSONResponse)
		return
	}
	client, err := h.catalog.CreateClient(c.Request.Context(), r.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}
