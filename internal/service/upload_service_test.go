package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/imaging"
)

type stubStorage struct {
	files   map[string][]byte
	saveErr error
}

func newStubStorage() *stubStorage {
	return &stubStorage{files: map[string][]byte{}}
}

func (s *stubStorage) Save(filename string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.files[filename] = data
	return "/staging/" + filename, nil
}

func (s *stubStorage) ReadFile(filename string) ([]byte, error) {
	data, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("no such file")
	}
	return data, nil
}

func (s *stubStorage) Delete(filename string) error {
	delete(s.files, filename)
	return nil
}

func (s *stubStorage) Exists(filename string) bool {
	_, ok := s.files[filename]
	return ok
}

func (s *stubStorage) Path(filename string) string {
	return "/staging/" + filename
}

func newTestUploadService(storage *stubStorage) *UploadService {
	svc := NewUploadService(storage, nil, UploadServiceConfig{MaxFileSize: 1024})
	svc.normalize = func(data []byte, b imaging.Bounds) (*imaging.Result, error) {
		return &imaging.Result{Data: data, Format: "jpeg", Resized: false, Width: 400, Height: 500, OrigW: 400, OrigH: 500}, nil
	}
	return svc
}

func TestStageAllStagesDocument(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	manifest, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPV, Filename: "Vonnis 2024.pdf", Data: []byte("%PDF")},
	})
	require.NoError(t, err)

	require.True(t, manifest.Has(models.KeyPV))
	file := manifest[models.KeyPV].First()
	assert.Equal(t, "Vonnis 2024.pdf", file.DisplayName)
	assert.True(t, strings.HasSuffix(file.StorageName, ".pdf"))
	assert.Contains(t, file.StorageName, "vonnis_2024")
	assert.True(t, storage.Exists(file.StorageName))
}

func TestStageAllEditMergeKeepsAbsentKeys(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	existing := models.UploadManifest{
		models.KeyPasfoto: models.SingleAttachment(models.StoredFile{StorageName: "old_pasfoto.jpg", DisplayName: "foto.jpg"}),
	}

	manifest, err := svc.StageAll(existing, []IncomingFile{
		{Key: models.KeyPV, Filename: "vonnis.pdf", Data: []byte("%PDF")},
	})
	require.NoError(t, err)

	assert.True(t, manifest.Has(models.KeyPasfoto))
	assert.Equal(t, "old_pasfoto.jpg", manifest[models.KeyPasfoto].First().StorageName)
	assert.True(t, manifest.Has(models.KeyPV))
}

func TestStageAllBatchIsAtomic(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	existing := models.UploadManifest{
		models.KeySVPB: models.SingleAttachment(models.StoredFile{StorageName: "old_svpb.pdf"}),
	}

	manifest, err := svc.StageAll(existing, []IncomingFile{
		{Key: models.KeyPV, Filename: "vonnis.pdf", Data: []byte("%PDF")},
		{Key: models.KeyHoreca, Filename: "cert.exe", Data: []byte("MZ")},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	// Nothing from the failed batch survives and the old manifest is intact.
	assert.Empty(t, storage.files)
	assert.Equal(t, existing, manifest)
}

func TestStageAllNormalizesImageClass(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)
	svc.normalize = func(data []byte, b imaging.Bounds) (*imaging.Result, error) {
		assert.Equal(t, 276, b.MinW)
		return &imaging.Result{Data: []byte("jpg-out"), Format: "jpeg", Resized: true, Width: 355, Height: 355, OrigW: 100, OrigH: 100}, nil
	}

	manifest, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPasfoto, Filename: "Pasfoto.png", Data: []byte("png-in")},
	})
	require.NoError(t, err)

	file := manifest[models.KeyPasfoto].First()
	assert.True(t, file.Resized)
	assert.Equal(t, 355, file.Width)
	assert.Equal(t, 100, file.OrigWidth)
	assert.Contains(t, file.StorageName, "_resized")
	assert.True(t, strings.HasSuffix(file.StorageName, ".jpg"))
	assert.Equal(t, []byte("jpg-out"), storage.files[file.StorageName])
}

func TestStageAllRejectsUndecodableImage(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)
	svc.normalize = imaging.Normalize

	_, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyHandtekening, Filename: "handtekening.jpg", Data: []byte("not an image")},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDecode))
	assert.Empty(t, storage.files)
}

func TestStageAllRejectsSecondFileForSingleSlot(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	_, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPV, Filename: "a.pdf", Data: []byte("%PDF")},
		{Key: models.KeyPV, Filename: "b.pdf", Data: []byte("%PDF")},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStageAllAcceptsMultipleIdentityFiles(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	manifest, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyID, Filename: "id-voor.jpg", Data: []byte("a")},
		{Key: models.KeyID, Filename: "id-achter.jpg", Data: []byte("b")},
	})
	require.NoError(t, err)

	att := manifest[models.KeyID]
	assert.True(t, att.Multiple)
	require.Len(t, att.Files, 2)
	assert.Equal(t, []string{"id-voor.jpg", "id-achter.jpg"}, att.DisplayNames())
}

func TestStageAllRejectsOversizeAndEmptyFiles(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	_, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPV, Filename: "big.pdf", Data: make([]byte, 2048)},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPV, Filename: "empty.pdf", Data: nil},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCleanupIsIdempotent(t *testing.T) {
	storage := newStubStorage()
	svc := newTestUploadService(storage)

	manifest, err := svc.StageAll(nil, []IncomingFile{
		{Key: models.KeyPV, Filename: "vonnis.pdf", Data: []byte("%PDF")},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cleanup(manifest))
	assert.Empty(t, storage.files)
	assert.Empty(t, manifest)
	require.NoError(t, svc.Cleanup(manifest))
}
