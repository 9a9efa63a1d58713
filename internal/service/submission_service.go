package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/mailer"
)

type sessionStore interface {
	Get(ctx context.Context, ownerID string) (*models.SubmissionSession, error)
	Save(ctx context.Context, session *models.SubmissionSession) error
	Delete(ctx context.Context, ownerID string) error
}

type attachmentStager interface {
	StageAll(existing models.UploadManifest, incoming []IncomingFile) (models.UploadManifest, error)
	Cleanup(manifest models.UploadManifest) error
	ReadStaged(name string) ([]byte, error)
	StagedPath(name string) string
}

type documentAssembler interface {
	GenerateAll(session *models.SubmissionSession) error
	Discard(session *models.SubmissionSession)
	DownloadToken(session *models.SubmissionSession) (string, error)
	ResolveDownload(session *models.SubmissionSession, token string) (path, filename string, err error)
	StoredPath(name string) string
}

type notificationDispatcher interface {
	Send(ctx context.Context, req DispatchRequest) (*dto.SendResult, error)
}

// SubmissionServiceConfig sets the inactivity window.
type SubmissionServiceConfig struct {
	SessionTimeout time.Duration
}

// SubmissionService drives the session lifecycle. All mutating operations on
// one owner's session are serialized through a per-owner mutex so concurrent
// requests cannot interleave staging, assembly and cleanup.
type SubmissionService struct {
	sessions  sessionStore
	uploads   attachmentStager
	documents documentAssembler
	dispatch  notificationDispatcher
	validate  *validator.Validate
	logger    *zap.Logger
	cfg       SubmissionServiceConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewSubmissionService constructs the orchestrator.
func NewSubmissionService(sessions sessionStore, uploads attachmentStager, documents documentAssembler, dispatch notificationDispatcher, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}
	return &SubmissionService{
		sessions:  sessions,
		uploads:   uploads,
		documents: documents,
		dispatch:  dispatch,
		validate:  validate,
		logger:    logger,
		cfg:       cfg,
		locks:     map[string]*sync.Mutex{},
		now:       time.Now,
	}
}

func (s *SubmissionService) lockOwner(ownerID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ownerID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// load fetches the owner's session and destroys it when expired, treating an
// expired session exactly like a missing one.
func (s *SubmissionService) load(ctx context.Context, ownerID string) (*models.SubmissionSession, error) {
	session, err := s.sessions.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now(), s.cfg.SessionTimeout) {
		s.destroy(ctx, session)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sessie is verlopen")
	}
	return session, nil
}

// destroy releases every resource the session owns: staged files, generated
// documents, and the session record itself.
func (s *SubmissionService) destroy(ctx context.Context, session *models.SubmissionSession) {
	if err := s.uploads.Cleanup(session.Manifest); err != nil {
		s.logger.Warn("session cleanup left staged files behind",
			zap.String("owner_id", session.OwnerID), zap.Error(err))
	}
	s.documents.Discard(session)
	if err := s.sessions.Delete(ctx, session.OwnerID); err != nil {
		s.logger.Warn("failed to delete session record",
			zap.String("owner_id", session.OwnerID), zap.Error(err))
	}
}

// Open returns the owner's live session, creating a fresh editing session
// when none exists.
func (s *SubmissionService) Open(ctx context.Context, principal models.Principal) (*models.SubmissionSession, error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err == nil {
		session.Touch(s.now())
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	}
	if !appErrors.Is(err, appErrors.ErrNotFound) {
		return nil, err
	}

	session = &models.SubmissionSession{
		ID:           uuid.NewString(),
		OwnerID:      principal.UserID,
		OwnerEmail:   principal.Email,
		State:        models.StateEditing,
		Manifest:     models.UploadManifest{},
		CreatedAt:    s.now(),
		LastActivity: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit validates the posted form, stages the uploaded files with
// edit-merge semantics and overwrites the field map.
func (s *SubmissionService) Submit(ctx context.Context, principal models.Principal, req dto.SubmitFormRequest, files []IncomingFile) (*models.SubmissionSession, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "formulier is onvolledig of ongeldig")
	}

	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.openLocked(ctx, principal)
	if err != nil {
		return nil, err
	}

	manifest, err := s.uploads.StageAll(session.Manifest, files)
	if err != nil {
		return nil, err
	}

	// Re-submitting from review drops the stale generated documents.
	s.documents.Discard(session)

	session.Fields = req.ToFieldMap()
	session.Manifest = manifest
	session.State = models.StateEditing
	session.Touch(s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SubmissionService) openLocked(ctx context.Context, principal models.Principal) (*models.SubmissionSession, error) {
	session, err := s.load(ctx, principal.UserID)
	if err == nil {
		return session, nil
	}
	if !appErrors.Is(err, appErrors.ErrNotFound) {
		return nil, err
	}
	return &models.SubmissionSession{
		ID:           uuid.NewString(),
		OwnerID:      principal.UserID,
		OwnerEmail:   principal.Email,
		State:        models.StateEditing,
		Manifest:     models.UploadManifest{},
		CreatedAt:    s.now(),
		LastActivity: s.now(),
	}, nil
}

// Review assembles both documents and moves the session to the review phase.
func (s *SubmissionService) Review(ctx context.Context, principal models.Principal) (*models.SubmissionSession, string, error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err != nil {
		return nil, "", err
	}
	if session.Fields.IsEmpty() {
		return nil, "", appErrors.Clone(appErrors.ErrState, "vul eerst het formulier in")
	}

	if err := s.documents.GenerateAll(session); err != nil {
		return nil, "", err
	}

	session.State = models.StateReviewing
	session.Touch(s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := s.documents.DownloadToken(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// SendApplication dispatches both notification emails. On success the
// session's files and fields are gone and the state is Confirmed; on
// dispatcher failure everything is kept so the user can retry from review.
func (s *SubmissionService) SendApplication(ctx context.Context, principal models.Principal) (*dto.SendResult, error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateReviewing {
		return nil, appErrors.Clone(appErrors.ErrState, "controleer de aanvraag voordat u verzendt")
	}
	if len(session.Manifest.StorageNames()) == 0 {
		return nil, appErrors.Clone(appErrors.ErrState, "geen bijlagen gevonden")
	}

	session.State = models.StateSending
	session.Touch(s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	req := DispatchRequest{Session: session, Attachments: s.collectAttachments(session)}
	if logo, ok := session.Manifest[models.KeyLogo]; ok && len(logo.Files) > 0 {
		req.InlineLogo = &mailer.Attachment{
			Path: s.uploads.StagedPath(logo.First().StorageName),
			Name: logo.First().DisplayName,
		}
	}

	result, err := s.dispatch.Send(ctx, req)
	if err != nil {
		// Retryable: back to review with everything intact.
		session.State = models.StateReviewing
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logger.Error("failed to restore review state after send failure",
				zap.String("owner_id", session.OwnerID), zap.Error(saveErr))
		}
		return nil, err
	}

	if err := s.uploads.Cleanup(session.Manifest); err != nil {
		s.logger.Warn("post-send cleanup left staged files behind",
			zap.String("owner_id", session.OwnerID), zap.Error(err))
	}
	s.documents.Discard(session)
	session.Fields = models.FieldMap{}
	session.Manifest = models.UploadManifest{}
	session.State = models.StateConfirmed
	session.Touch(s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SubmissionService) collectAttachments(session *models.SubmissionSession) []mailer.Attachment {
	var attachments []mailer.Attachment
	for _, key := range models.AttachmentKeys {
		// The logo travels as an inline cid image in the department mail.
		if key == models.KeyLogo {
			continue
		}
		att, ok := session.Manifest[key]
		if !ok {
			continue
		}
		for _, f := range att.Files {
			attachments = append(attachments, mailer.Attachment{
				Path: s.uploads.StagedPath(f.StorageName),
				Name: f.DisplayName,
			})
		}
	}
	if session.MergePath != "" {
		attachments = append(attachments, mailer.Attachment{
			Path: s.documents.StoredPath(session.MergePath),
			Name: session.MergeFilename,
		})
	}
	return attachments
}

// Restart discards staged attachments and generated documents but keeps the
// field map, returning the session to editing for re-display.
func (s *SubmissionService) Restart(ctx context.Context, principal models.Principal) (*models.SubmissionSession, error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.uploads.Cleanup(session.Manifest); err != nil {
		s.logger.Warn("restart cleanup left staged files behind",
			zap.String("owner_id", session.OwnerID), zap.Error(err))
	}
	s.documents.Discard(session)
	session.Manifest = models.UploadManifest{}
	session.State = models.StateEditing
	session.Touch(s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Abandon destroys the session and everything it owns. Missing sessions are
// fine; the call is idempotent.
func (s *SubmissionService) Abandon(ctx context.Context, principal models.Principal) error {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.sessions.Get(ctx, principal.UserID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	s.destroy(ctx, session)
	return nil
}

// DownloadMerge resolves a download token for the owner's current session.
func (s *SubmissionService) DownloadMerge(ctx context.Context, principal models.Principal, token string) (path, filename string, err error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err != nil {
		return "", "", err
	}
	return s.documents.ResolveDownload(session, token)
}

// ServeUpload returns a staged file for preview, but only when the owner's
// manifest actually references it.
func (s *SubmissionService) ServeUpload(ctx context.Context, principal models.Principal, storageName string) ([]byte, string, error) {
	unlock := s.lockOwner(principal.UserID)
	defer unlock()

	session, err := s.load(ctx, principal.UserID)
	if err != nil {
		return nil, "", err
	}
	for _, key := range models.AttachmentKeys {
		att, ok := session.Manifest[key]
		if !ok {
			continue
		}
		for _, f := range att.Files {
			if f.StorageName == storageName {
				data, err := s.uploads.ReadStaged(storageName)
				if err != nil {
					return nil, "", err
				}
				return data, f.DisplayName, nil
			}
		}
	}
	return nil, "", appErrors.Clone(appErrors.ErrNotFound, "bestand hoort niet bij deze aanvraag")
}
