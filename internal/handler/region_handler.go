package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	"github.com/praesidion/wpbr-intake/pkg/response"
)

// RegionHandler serves the destination registry.
type RegionHandler struct{}

// NewRegionHandler constructs the handler.
func NewRegionHandler() *RegionHandler {
	return &RegionHandler{}
}

// List godoc
// @Summary Regions and their korpscheftaken addresses
// @Tags Regions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /regions [get]
func (h *RegionHandler) List(c *gin.Context) {
	regions := models.Regions()
	views := make([]dto.RegionView, 0, len(regions))
	for _, r := range regions {
		views = append(views, dto.RegionView{Name: r.Name, Addresses: r.Addresses})
	}
	response.JSON(c, http.StatusOK, views)
}
