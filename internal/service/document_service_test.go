package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/export"
	"github.com/praesidion/wpbr-intake/pkg/storage"
)

type stubSummary struct {
	sections []export.Section
	err      error
}

func (s *stubSummary) Render(title string, sections []export.Section) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sections = sections
	return []byte("%PDF summary"), nil
}

func newTestDocumentService(store *stubStorage) (*DocumentService, *stubSummary) {
	summary := &stubSummary{}
	signer := storage.NewSignedURLSigner("test-secret", 30*time.Minute)
	svc := NewDocumentService(summary, store, signer, nil, DocumentServiceConfig{TemplatePath: "template.docx"})
	svc.merge = func(path string, values map[string]string) ([]byte, error) {
		return []byte("PK merged " + values["achternaam"]), nil
	}
	return svc, summary
}

func testSession() *models.SubmissionSession {
	return &models.SubmissionSession{
		ID:      "sub-1",
		OwnerID: "user-1",
		State:   models.StateEditing,
		Fields:  models.FieldMap{Achternaam: "Jansen", Voornamen: "Pieter", Bedrijfsnaam: "Praesidion"},
		Manifest: models.UploadManifest{
			models.KeyID: models.MultiAttachment([]models.StoredFile{
				{StorageName: "x1_id-voor.jpg", DisplayName: "id-voor.jpg"},
			}),
		},
	}
}

func TestGenerateAllStoresBothArtifacts(t *testing.T) {
	store := newStubStorage()
	svc, summary := newTestDocumentService(store)
	session := testSession()

	require.NoError(t, svc.GenerateAll(session))

	assert.Equal(t, "sub-1_samenvatting.pdf", session.SummaryPath)
	assert.Equal(t, "sub-1_aanvraagformulier.docx", session.MergePath)
	assert.Equal(t, "241209 Nieuw Aanvraagformulier Jansen.docx", session.MergeFilename)
	assert.True(t, store.Exists(session.SummaryPath))
	assert.True(t, store.Exists(session.MergePath))

	// Attachments section lists display names, not storage names.
	last := summary.sections[len(summary.sections)-1]
	assert.Equal(t, "Bijlagen", last.Title)
	require.Len(t, last.Rows, 1)
	assert.Equal(t, "id-voor.jpg", last.Rows[0].Value)
}

func TestGenerateAllTemplateFailure(t *testing.T) {
	store := newStubStorage()
	svc, _ := newTestDocumentService(store)
	svc.merge = func(path string, values map[string]string) ([]byte, error) {
		return nil, fmt.Errorf("open template: no such file")
	}

	err := svc.GenerateAll(testSession())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTemplate))
	assert.Empty(t, store.files)
}

func TestDiscardRemovesArtifacts(t *testing.T) {
	store := newStubStorage()
	svc, _ := newTestDocumentService(store)
	session := testSession()
	require.NoError(t, svc.GenerateAll(session))

	svc.Discard(session)

	assert.Empty(t, store.files)
	assert.Empty(t, session.SummaryPath)
	assert.Empty(t, session.MergePath)
	assert.Empty(t, session.MergeFilename)
}

func TestDownloadTokenRoundTrip(t *testing.T) {
	store := newStubStorage()
	svc, _ := newTestDocumentService(store)
	session := testSession()
	require.NoError(t, svc.GenerateAll(session))

	token, err := svc.DownloadToken(session)
	require.NoError(t, err)

	path, filename, err := svc.ResolveDownload(session, token)
	require.NoError(t, err)
	assert.Equal(t, "/staging/sub-1_aanvraagformulier.docx", path)
	assert.Equal(t, "241209 Nieuw Aanvraagformulier Jansen.docx", filename)
}

func TestResolveDownloadRejectsForeignToken(t *testing.T) {
	store := newStubStorage()
	svc, _ := newTestDocumentService(store)
	session := testSession()
	require.NoError(t, svc.GenerateAll(session))

	other := testSession()
	other.ID = "sub-2"
	require.NoError(t, svc.GenerateAll(other))
	otherToken, err := svc.DownloadToken(other)
	require.NoError(t, err)

	_, _, err = svc.ResolveDownload(session, otherToken)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestDownloadTokenRequiresGeneratedDocument(t *testing.T) {
	store := newStubStorage()
	svc, _ := newTestDocumentService(store)

	_, err := svc.DownloadToken(testSession())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrState))
}
