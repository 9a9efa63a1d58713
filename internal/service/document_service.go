package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/models"
	"github.com/praesidion/wpbr-intake/pkg/docx"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/export"
)

type summaryRenderer interface {
	Render(title string, sections []export.Section) ([]byte, error)
}

type documentStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Path(filename string) string
}

type downloadSigner interface {
	Generate(submissionID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (submissionID, relPath string, expiresAt time.Time, err error)
}

// DocumentServiceConfig locates the merge template.
type DocumentServiceConfig struct {
	TemplatePath string
}

// DocumentService assembles the two review artifacts from the field map: the
// summary PDF and the mail-merge DOCX.
type DocumentService struct {
	summary summaryRenderer
	storage documentStorage
	signer  downloadSigner
	merge   func(path string, values map[string]string) ([]byte, error)
	logger  *zap.Logger
	cfg     DocumentServiceConfig
}

// NewDocumentService constructs the assembler.
func NewDocumentService(summary summaryRenderer, storage documentStorage, signer downloadSigner, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		summary: summary,
		storage: storage,
		signer:  signer,
		merge:   docx.Merge,
		logger:  logger,
		cfg:     cfg,
	}
}

// summaryTitle heads the generated summary page.
const summaryTitle = "Aanvraag toestemming beveiligingsmedewerker"

// MergeFilename is the filename the department sees for the generated
// application form.
func MergeFilename(fields models.FieldMap) string {
	return fmt.Sprintf("241209 Nieuw Aanvraagformulier %s.docx", fields.Achternaam)
}

// AssembleSummary renders the fixed-layout summary. Missing values keep
// their row; assembly never fails on an empty field.
func (s *DocumentService) AssembleSummary(fields models.FieldMap, manifest models.UploadManifest) ([]byte, error) {
	attachmentRows := make([]export.Row, 0, len(models.AttachmentKeys))
	for _, key := range models.AttachmentKeys {
		if !manifest.Has(key) {
			continue
		}
		spec, _ := models.SpecFor(key)
		attachmentRows = append(attachmentRows, export.Row{
			Label: spec.Label,
			Value: strings.Join(manifest[key].DisplayNames(), ", "),
		})
	}
	if len(attachmentRows) == 0 {
		attachmentRows = append(attachmentRows, export.Row{Label: "Geen bijlagen", Value: ""})
	}

	sections := []export.Section{
		{
			Title: "Gegevens medewerker",
			Rows: []export.Row{
				{Label: "Achternaam", Value: strings.TrimSpace(fields.Voorvoegsel + " " + fields.Achternaam)},
				{Label: "Voornamen", Value: fields.Voornamen},
				{Label: "BSN", Value: fields.BSN},
				{Label: "Geboortedatum", Value: fields.Geboortedatum},
				{Label: "Geboorteplaats", Value: fields.Geboorteplaats},
				{Label: "Geboorteland", Value: fields.Geboorteland},
			},
		},
		{
			Title: "Contactgegevens",
			Rows: []export.Row{
				{Label: "Straat", Value: strings.TrimSpace(fields.StraatMedewerker + " " + fields.Huisnummer)},
				{Label: "Postcode", Value: fields.PostcodeMedew},
				{Label: "Woonplaats", Value: fields.Woonplaats},
				{Label: "Telefoon", Value: fields.TelefoonMedew},
				{Label: "E-mail", Value: fields.EmailMedewerker},
			},
		},
		{
			Title: "Werkgever",
			Rows: []export.Row{
				{Label: "Bedrijfsnaam", Value: fields.Bedrijfsnaam},
				{Label: "Adres", Value: fields.StraatBedrijf},
				{Label: "Postcode / plaats", Value: strings.TrimSpace(fields.PostcodeBedrijf + " " + fields.PlaatsBedrijf)},
				{Label: "Vergunning", Value: strings.TrimSpace(fields.VergunningType + " " + fields.VergunningNr)},
				{Label: "Afdeling", Value: fields.Afdeling},
			},
		},
		{
			Title: "Bijlagen",
			Rows:  attachmentRows,
		},
	}

	data, err := s.summary.Render(summaryTitle, sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "samenvatting genereren mislukt")
	}
	return data, nil
}

// AssembleMerge fills the application template with the field map. Absent
// fields render empty; an unreadable template is a TemplateError.
func (s *DocumentService) AssembleMerge(fields models.FieldMap, manifest models.UploadManifest) ([]byte, error) {
	data, err := s.merge(s.cfg.TemplatePath, fields.TemplateData(manifest))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTemplate.Code, appErrors.ErrTemplate.Status, "aanvraagformulier genereren mislukt")
	}
	return data, nil
}

// GenerateAll assembles both artifacts, stores them under session-scoped
// names and records the handles on the session.
func (s *DocumentService) GenerateAll(session *models.SubmissionSession) error {
	summary, err := s.AssembleSummary(session.Fields, session.Manifest)
	if err != nil {
		return err
	}
	merged, err := s.AssembleMerge(session.Fields, session.Manifest)
	if err != nil {
		return err
	}

	summaryName := session.ID + "_samenvatting.pdf"
	mergeName := session.ID + "_aanvraagformulier.docx"
	if _, err := s.storage.Save(summaryName, summary); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "samenvatting opslaan mislukt")
	}
	if _, err := s.storage.Save(mergeName, merged); err != nil {
		_ = s.storage.Delete(summaryName)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "aanvraagformulier opslaan mislukt")
	}

	session.SummaryPath = summaryName
	session.MergePath = mergeName
	session.MergeFilename = MergeFilename(session.Fields)
	return nil
}

// Discard removes the generated artifacts and clears their handles.
func (s *DocumentService) Discard(session *models.SubmissionSession) {
	for _, name := range []string{session.SummaryPath, session.MergePath} {
		if name == "" {
			continue
		}
		if err := s.storage.Delete(name); err != nil {
			s.logger.Warn("failed to delete generated document", zap.String("file", name), zap.Error(err))
		}
	}
	session.SummaryPath = ""
	session.MergePath = ""
	session.MergeFilename = ""
}

// DownloadToken issues a short-lived token for the session's merge document.
func (s *DocumentService) DownloadToken(session *models.SubmissionSession) (string, error) {
	if session.MergePath == "" {
		return "", appErrors.Clone(appErrors.ErrState, "geen gegenereerd document beschikbaar")
	}
	token, _, err := s.signer.Generate(session.ID, session.MergePath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "downloadtoken genereren mislukt")
	}
	return token, nil
}

// ResolveDownload validates a token against the live session and returns the
// on-disk path plus the download filename.
func (s *DocumentService) ResolveDownload(session *models.SubmissionSession, token string) (path, filename string, err error) {
	submissionID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrForbidden, "ongeldig of verlopen downloadtoken")
	}
	if submissionID != session.ID || relPath != session.MergePath || session.MergePath == "" {
		return "", "", appErrors.Clone(appErrors.ErrForbidden, "downloadtoken hoort niet bij deze aanvraag")
	}
	return s.storage.Path(relPath), session.MergeFilename, nil
}

// StoredPath exposes a generated artifact's on-disk path for mail
// attachment.
func (s *DocumentService) StoredPath(name string) string {
	return s.storage.Path(name)
}
