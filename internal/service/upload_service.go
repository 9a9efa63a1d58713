package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/imaging"
)

type stagingStorage interface {
	Save(filename string, data []byte) (string, error)
	ReadFile(filename string) ([]byte, error)
	Delete(filename string) error
	Exists(filename string) bool
	Path(filename string) string
}

// IncomingFile is one part of a multipart submission post, read into memory
// by the handler.
type IncomingFile struct {
	Key      models.AttachmentKey
	Filename string
	Data     []byte
}

// UploadServiceConfig bounds the stager.
type UploadServiceConfig struct {
	MaxFileSize int64
}

// UploadService stages submission attachments on local disk and keeps the
// manifest consistent with what is actually there.
type UploadService struct {
	storage   stagingStorage
	logger    *zap.Logger
	cfg       UploadServiceConfig
	normalize func(data []byte, b imaging.Bounds) (*imaging.Result, error)
}

// NewUploadService constructs the stager.
func NewUploadService(storage stagingStorage, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	return &UploadService{
		storage:   storage,
		logger:    logger,
		cfg:       cfg,
		normalize: imaging.Normalize,
	}
}

// StageAll validates and stages an incoming batch against the existing
// manifest. Keys present in the batch replace their slot; keys absent keep
// their previously staged files, so editing one field never forces
// re-uploading the rest. The batch is atomic: on any failure every file
// staged within it is removed and the existing manifest is returned
// untouched.
func (s *UploadService) StageAll(existing models.UploadManifest, incoming []IncomingFile) (models.UploadManifest, error) {
	manifest := existing.Clone()
	if manifest == nil {
		manifest = models.UploadManifest{}
	}

	staged := make([]string, 0, len(incoming))
	fail := func(err error) (models.UploadManifest, error) {
		for _, name := range staged {
			if delErr := s.storage.Delete(name); delErr != nil {
				s.logger.Warn("failed to remove staged file after batch failure",
					zap.String("file", name), zap.Error(delErr))
			}
		}
		return existing, err
	}

	byKey := make(map[models.AttachmentKey][]models.StoredFile)
	for _, in := range incoming {
		spec, ok := models.SpecFor(in.Key)
		if !ok {
			return fail(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("onbekend bijlageveld %q", in.Key)))
		}
		if !spec.Multiple && len(byKey[in.Key]) > 0 {
			return fail(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("veld %q accepteert maar één bestand", in.Key)))
		}

		file, err := s.stageOne(spec, in)
		if err != nil {
			return fail(err)
		}
		staged = append(staged, file.StorageName)
		byKey[in.Key] = append(byKey[in.Key], *file)
	}

	for key, files := range byKey {
		spec, _ := models.SpecFor(key)
		if spec.Multiple {
			manifest[key] = models.MultiAttachment(files)
		} else {
			manifest[key] = models.SingleAttachment(files[0])
		}
	}
	return manifest, nil
}

func (s *UploadService) stageOne(spec models.AttachmentSpec, in IncomingFile) (*models.StoredFile, error) {
	if len(in.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("leeg bestand voor %q", spec.Key))
	}
	if int64(len(in.Data)) > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("bestand voor %q is groter dan %d bytes", spec.Key, s.cfg.MaxFileSize))
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !extAllowed(spec.AllowedExts, ext) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("bestandstype %q is niet toegestaan voor %q", ext, spec.Key))
	}

	data := in.Data
	file := models.StoredFile{DisplayName: filepath.Base(in.Filename)}

	marker := ""
	if spec.Bounds != nil {
		res, err := s.normalize(data, *spec.Bounds)
		if err != nil {
			if errors.Is(err, imaging.ErrDecode) {
				return nil, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status,
					fmt.Sprintf("bestand voor %q is geen geldige JPG- of PNG-afbeelding", spec.Key))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "afbeelding verwerken mislukt")
		}
		data = res.Data
		file.Resized = res.Resized
		file.Width = res.Width
		file.Height = res.Height
		file.OrigWidth = res.OrigW
		file.OrigHeight = res.OrigH
		if res.Resized {
			marker = "_resized"
		}
		if res.Format == "png" {
			ext = ".png"
		} else {
			ext = ".jpg"
		}
	}

	name := s.storageName(in.Filename, marker, ext)
	if _, err := s.storage.Save(name, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bestand opslaan mislukt")
	}
	file.StorageName = name
	return &file, nil
}

// storageName builds a collision-resistant name while keeping the original
// base recognizable on disk.
func (s *UploadService) storageName(original, marker, ext string) string {
	base := sanitize(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if base == "" {
		base = "bestand"
	}
	for {
		name := fmt.Sprintf("%s_%s%s%s", randomSuffix(), base, marker, ext)
		if !s.storage.Exists(name) {
			return name
		}
	}
}

// Cleanup removes every staged file in the manifest and then clears the
// manifest, so it never references files that are gone. Deletion is
// best-effort and idempotent: missing files are fine, and one failure does
// not stop the rest.
func (s *UploadService) Cleanup(manifest models.UploadManifest) error {
	var lastErr error
	for _, name := range manifest.StorageNames() {
		if err := s.storage.Delete(name); err != nil {
			s.logger.Warn("failed to delete staged file", zap.String("file", name), zap.Error(err))
			lastErr = err
		}
	}
	for key := range manifest {
		delete(manifest, key)
	}
	return lastErr
}

// ReadStaged returns the bytes of one staged file for preview serving.
func (s *UploadService) ReadStaged(name string) ([]byte, error) {
	data, err := s.storage.ReadFile(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "bestand niet gevonden")
	}
	return data, nil
}

// StagedPath resolves a staged name to its on-disk path for mail attachments.
func (s *UploadService) StagedPath(name string) string {
	return s.storage.Path(name)
}

func extAllowed(allowed []string, ext string) bool {
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}

func sanitize(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
