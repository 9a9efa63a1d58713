package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	"github.com/praesidion/wpbr-intake/internal/service"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/response"
)

type trackingService interface {
	RecordOpen(ctx context.Context, token string)
	RecordDelivered(ctx context.Context, token string)
	Status(ctx context.Context, principal models.Principal, token string) (*dto.TrackingView, error)
	ListBySubmission(ctx context.Context, principal models.Principal, submissionID string) ([]dto.TrackingView, error)
}

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3B,
}

// TrackingHandler exposes the delivery-log endpoints.
type TrackingHandler struct {
	service trackingService
	metrics *service.MetricsService
}

// NewTrackingHandler constructs the handler.
func NewTrackingHandler(svc trackingService, metrics *service.MetricsService) *TrackingHandler {
	return &TrackingHandler{service: svc, metrics: metrics}
}

// Open godoc
// @Summary Open-tracking pixel
// @Tags Tracking
// @Produce image/gif
// @Param token path string true "Tracking token"
// @Success 200 {file} binary
// @Router /track/open/{token} [get]
func (h *TrackingHandler) Open(c *gin.Context) {
	// Always serve the pixel, valid token or not: mail clients get their
	// image and nobody can probe which tokens exist.
	h.service.RecordOpen(c.Request.Context(), c.Param("token"))
	if h.metrics != nil {
		h.metrics.ObservePixelHit()
	}
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "image/gif", trackingPixel)
}

// Delivered godoc
// @Summary Delivery callback
// @Tags Tracking
// @Param token path string true "Tracking token"
// @Success 204
// @Router /track/delivered/{token} [get]
func (h *TrackingHandler) Delivered(c *gin.Context) {
	h.service.RecordDelivered(c.Request.Context(), c.Param("token"))
	response.NoContent(c)
}

// Status godoc
// @Summary Delivery status of one email
// @Tags Tracking
// @Produce json
// @Param token path string true "Tracking token"
// @Success 200 {object} response.Envelope
// @Router /track/status/{token} [get]
func (h *TrackingHandler) Status(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.service.Status(c.Request.Context(), principal, c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// ListBySubmission godoc
// @Summary Delivery log of one submission
// @Tags Tracking
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/tracking [get]
func (h *TrackingHandler) ListBySubmission(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	views, err := h.service.ListBySubmission(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}
