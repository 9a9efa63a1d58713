package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
)

type trackingServiceMock struct {
	opened    []string
	delivered []string
	status    *dto.TrackingView
	list      []dto.TrackingView
	err       error
}

func (m *trackingServiceMock) RecordOpen(ctx context.Context, token string) {
	m.opened = append(m.opened, token)
}

func (m *trackingServiceMock) RecordDelivered(ctx context.Context, token string) {
	m.delivered = append(m.delivered, token)
}

func (m *trackingServiceMock) Status(ctx context.Context, principal models.Principal, token string) (*dto.TrackingView, error) {
	return m.status, m.err
}

func (m *trackingServiceMock) ListBySubmission(ctx context.Context, principal models.Principal, submissionID string) ([]dto.TrackingView, error) {
	return m.list, m.err
}

func TestTrackingHandlerOpenAlwaysServesPixel(t *testing.T) {
	mockSvc := &trackingServiceMock{}
	h := NewTrackingHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodGet, "/track/open/zomaar-een-token", nil)
	c, w := testContext(t, req, false)
	c.Params = gin.Params{{Key: "token", Value: "zomaar-een-token"}}

	h.Open(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Equal(t, trackingPixel, w.Body.Bytes())
	assert.Equal(t, []string{"zomaar-een-token"}, mockSvc.opened)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestTrackingHandlerDelivered(t *testing.T) {
	mockSvc := &trackingServiceMock{}
	h := NewTrackingHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodGet, "/track/delivered/tok-1", nil)
	c, w := testContext(t, req, false)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	h.Delivered(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"tok-1"}, mockSvc.delivered)
}

func TestTrackingHandlerStatus(t *testing.T) {
	mockSvc := &trackingServiceMock{
		status: &dto.TrackingView{Token: "tok-1", Status: "gelezen", ReadCount: 2},
	}
	h := NewTrackingHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodGet, "/track/status/tok-1", nil)
	c, w := testContext(t, req, true)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w.Body)
	assert.Equal(t, "gelezen", data["status"])
	assert.Equal(t, float64(2), data["read_count"])
}

func TestTrackingHandlerStatusUnknownToken(t *testing.T) {
	mockSvc := &trackingServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")}
	h := NewTrackingHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodGet, "/track/status/onbekend", nil)
	c, w := testContext(t, req, true)
	c.Params = gin.Params{{Key: "token", Value: "onbekend"}}

	h.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackingHandlerListBySubmission(t *testing.T) {
	mockSvc := &trackingServiceMock{
		list: []dto.TrackingView{
			{Token: "tok-afd", Status: "afgeleverd"},
			{Token: "tok-conf", Status: "verzonden"},
		},
	}
	h := NewTrackingHandler(mockSvc, nil)

	req, _ := http.NewRequest(http.MethodGet, "/submissions/sub-1/tracking", nil)
	c, w := testContext(t, req, true)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	h.ListBySubmission(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "afgeleverd", envelope.Data[0]["status"])
}

func TestRegionHandlerList(t *testing.T) {
	h := NewRegionHandler()

	req, _ := http.NewRequest(http.MethodGet, "/regions", nil)
	c, w := testContext(t, req, true)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.RegionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data)
	assert.Equal(t, "Noord-Nederland", envelope.Data[0].Name)
}
