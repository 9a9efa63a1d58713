package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	"github.com/praesidion/wpbr-intake/internal/service"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/response"
)

type submissionService interface {
	Open(ctx context.Context, principal models.Principal) (*models.SubmissionSession, error)
	Submit(ctx context.Context, principal models.Principal, req dto.SubmitFormRequest, files []service.IncomingFile) (*models.SubmissionSession, error)
	Review(ctx context.Context, principal models.Principal) (*models.SubmissionSession, string, error)
	SendApplication(ctx context.Context, principal models.Principal) (*dto.SendResult, error)
	Restart(ctx context.Context, principal models.Principal) (*models.SubmissionSession, error)
	Abandon(ctx context.Context, principal models.Principal) error
	DownloadMerge(ctx context.Context, principal models.Principal, token string) (path, filename string, err error)
	ServeUpload(ctx context.Context, principal models.Principal, storageName string) ([]byte, string, error)
}

// SubmissionHandler exposes the submission lifecycle endpoints.
type SubmissionHandler struct {
	service   submissionService
	metrics   *service.MetricsService
	maxUpload int64
}

// NewSubmissionHandler constructs the handler. maxUpload bounds how many
// bytes of a single multipart file are read into memory; zero disables the
// pre-read check (the stager still enforces its own limit).
func NewSubmissionHandler(svc submissionService, metrics *service.MetricsService, maxUpload int64) *SubmissionHandler {
	return &SubmissionHandler{service: svc, metrics: metrics, maxUpload: maxUpload}
}

// Open godoc
// @Summary Get or create the caller's submission session
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submission [get]
func (h *SubmissionHandler) Open(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.service.Open(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSessionView(session))
}

// Submit godoc
// @Summary Submit the application form with attachments
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submission [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitFormRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "formulier kan niet worden gelezen"))
		return
	}

	files, err := h.collectFiles(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.service.Submit(c.Request.Context(), principal, req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		staged := map[models.AttachmentKey]bool{}
		for _, f := range files {
			h.metrics.ObserveUpload(int64(len(f.Data)))
			staged[f.Key] = true
		}
		for key := range staged {
			for _, f := range session.Manifest[key].Files {
				if f.Resized {
					h.metrics.ObserveResized()
				}
			}
		}
	}
	response.JSON(c, http.StatusOK, toSessionView(session))
}

func (h *SubmissionHandler) collectFiles(c *gin.Context) ([]service.IncomingFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "multipart formulier kan niet worden gelezen")
	}

	var files []service.IncomingFile
	for _, key := range models.AttachmentKeys {
		for _, header := range form.File[string(key)] {
			// Reject on the declared part size before buffering the
			// content; the stager re-checks the actual byte count.
			if h.maxUpload > 0 && header.Size > h.maxUpload {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("bestand voor %q is groter dan %d bytes", key, h.maxUpload))
			}
			data, err := readMultipartFile(header)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bestand lezen mislukt")
			}
			files = append(files, service.IncomingFile{
				Key:      key,
				Filename: header.Filename,
				Data:     data,
			})
		}
	}
	return files, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// Review godoc
// @Summary Assemble the review documents
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submission/review [post]
func (h *SubmissionHandler) Review(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, token, err := h.service.Review(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveDocument("summary")
		h.metrics.ObserveDocument("merge")
	}
	response.JSON(c, http.StatusOK, dto.ReviewView{
		SessionView:   toSessionView(session),
		DownloadToken: token,
	})
}

// Send godoc
// @Summary Send the application to the selected department
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submission/send [post]
func (h *SubmissionHandler) Send(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.SendApplication(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Restart godoc
// @Summary Discard staged attachments and return to editing
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submission/restart [post]
func (h *SubmissionHandler) Restart(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.service.Restart(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSessionView(session))
}

// Abandon godoc
// @Summary Destroy the submission session and its files
// @Tags Submissions
// @Success 204
// @Router /submission [delete]
func (h *SubmissionHandler) Abandon(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Abandon(c.Request.Context(), principal); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadDocument godoc
// @Summary Download the generated application document
// @Tags Submissions
// @Produce application/octet-stream
// @Param token query string true "Download token"
// @Success 200 {file} binary
// @Router /submission/document [get]
func (h *SubmissionHandler) DownloadDocument(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "downloadtoken ontbreekt"))
		return
	}
	path, filename, err := h.service.DownloadMerge(c.Request.Context(), principal, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, filename)
}

// ServeUpload godoc
// @Summary Preview a staged attachment
// @Tags Submissions
// @Produce application/octet-stream
// @Param name path string true "Storage name"
// @Success 200 {file} binary
// @Router /uploads/{name} [get]
func (h *SubmissionHandler) ServeUpload(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	name := c.Param("name")
	data, display, err := h.service.ServeUpload(c.Request.Context(), principal, name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+display+`"`)
	c.Data(http.StatusOK, contentTypeFor(name), data)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

func toSessionView(session *models.SubmissionSession) dto.SessionView {
	attachments := make([]dto.AttachmentView, 0)
	for _, key := range models.AttachmentKeys {
		att, ok := session.Manifest[key]
		if !ok {
			continue
		}
		spec, _ := models.SpecFor(key)
		for _, f := range att.Files {
			attachments = append(attachments, dto.AttachmentView{
				Key:         string(key),
				Label:       spec.Label,
				DisplayName: f.DisplayName,
				StorageName: f.StorageName,
				Resized:     f.Resized,
				Width:       f.Width,
				Height:      f.Height,
				OrigWidth:   f.OrigWidth,
				OrigHeight:  f.OrigHeight,
			})
		}
	}
	return dto.SessionView{
		ID:            session.ID,
		State:         session.State,
		Fields:        session.Fields,
		Attachments:   attachments,
		MergeFilename: session.MergeFilename,
		LastActivity:  session.LastActivity.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
