package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/mailer"
)

type mailSender interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

type trackingWriter interface {
	Create(ctx context.Context, t *models.EmailTracking) error
}

// DispatchServiceConfig carries the dispatcher knobs.
type DispatchServiceConfig struct {
	BaseURL   string
	APIPrefix string
	From      string
	BCCSender bool
}

// DispatchRequest is one send action: the reviewed session plus the resolved
// attachment paths.
type DispatchRequest struct {
	Session     *models.SubmissionSession
	Attachments []mailer.Attachment
	InlineLogo  *mailer.Attachment
}

// DispatchService sends the department and confirmation emails for one
// submission and records a tracking row per successfully sent mail.
type DispatchService struct {
	sender   mailSender
	tracking trackingWriter
	logger   *zap.Logger
	cfg      DispatchServiceConfig
	now      func() time.Time
}

// NewDispatchService constructs the dispatcher.
func NewDispatchService(sender mailSender, tracking trackingWriter, logger *zap.Logger, cfg DispatchServiceConfig) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &DispatchService{
		sender:   sender,
		tracking: tracking,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Send delivers the application to the selected department and a confirmation
// to the applicant. The department mail is the one that matters: its failure
// aborts the send with a transport error and writes nothing, so the session
// can be retried. A failed confirmation is logged but does not undo an
// already delivered application.
func (s *DispatchService) Send(ctx context.Context, req DispatchRequest) (*dto.SendResult, error) {
	session := req.Session
	fields := session.Fields

	if !models.RegionAllows(fields.Afdeling, fields.EmailAfdeling) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gekozen e-mailadres hoort niet bij de gekozen afdeling")
	}

	submissionID := session.ID
	deptToken, err := newTrackingToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "token genereren mislukt")
	}
	confToken, err := newTrackingToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "token genereren mislukt")
	}

	logoCID := ""
	if req.InlineLogo != nil {
		logoCID = req.InlineLogo.Name
	}

	deptSubject := fmt.Sprintf("Aanvraag Beveiligingspas - %s", fields.FullName())
	deptText, deptHTML := s.departmentBody(session, logoCID)
	deptMsg := &mailer.Message{
		To:          []string{fields.EmailAfdeling},
		ReplyTo:     session.OwnerEmail,
		Subject:     deptSubject,
		Text:        deptText,
		HTML:        s.injectPixel(deptHTML, deptToken),
		Attachments: req.Attachments,
	}
	if req.InlineLogo != nil {
		deptMsg.Inline = []mailer.Attachment{*req.InlineLogo}
	}
	if s.cfg.BCCSender && s.cfg.From != "" {
		deptMsg.Bcc = []string{s.cfg.From}
	}

	if err := s.sender.Send(ctx, deptMsg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			"verzenden naar de afdeling korpscheftaken is mislukt")
	}
	s.record(ctx, deptToken, fields.EmailAfdeling, deptSubject, session, submissionID)

	confSubject := "Bevestiging aanvraag Beveiligingspas"
	confText, confHTML := s.confirmationBody(session)
	confMsg := &mailer.Message{
		To:      []string{session.OwnerEmail},
		Subject: confSubject,
		Text:    confText,
		HTML:    s.injectPixel(confHTML, confToken),
	}

	confirmationSent := true
	if err := s.sender.Send(ctx, confMsg); err != nil {
		confirmationSent = false
		s.logger.Warn("confirmation email failed",
			zap.String("submission_id", submissionID), zap.Error(err))
	} else {
		s.record(ctx, confToken, session.OwnerEmail, confSubject, session, submissionID)
	}

	return &dto.SendResult{
		SubmissionID: submissionID,
		SentTo:       fields.EmailAfdeling,
		Confirmation: confirmationSent,
	}, nil
}

func (s *DispatchService) record(ctx context.Context, token, to, subject string, session *models.SubmissionSession, submissionID string) {
	row := &models.EmailTracking{
		Token:        token,
		ToEmail:      to,
		Subject:      subject,
		OwnerID:      session.OwnerID,
		SubmissionID: submissionID,
		SentAt:       s.now().UTC(),
	}
	if err := s.tracking.Create(ctx, row); err != nil {
		// The mail is out; a missing log row must not fail the send.
		s.logger.Error("failed to record email tracking row",
			zap.String("submission_id", submissionID), zap.Error(err))
	}
}

// injectPixel appends the 1x1 open-tracking image just before the closing
// body tag, or at the end when the template has none.
func (s *DispatchService) injectPixel(html, token string) string {
	pixel := fmt.Sprintf(`<img src="%s%s/track/open/%s" width="1" height="1" alt="" style="display:none">`,
		s.cfg.BaseURL, s.cfg.APIPrefix, token)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + pixel + html[idx:]
	}
	return html + pixel
}

func (s *DispatchService) departmentBody(session *models.SubmissionSession, logoCID string) (text, html string) {
	f := session.Fields
	sentAt := s.now().Format("02-01-2006 15:04")

	logoImg := ""
	if logoCID != "" {
		logoImg = fmt.Sprintf(`<p><img src="cid:%s" alt="%s" style="max-height:80px"></p>
`, logoCID, f.Bedrijfsnaam)
	}

	var names []string
	for _, key := range models.AttachmentKeys {
		if !session.Manifest.Has(key) {
			continue
		}
		spec, _ := models.SpecFor(key)
		for _, display := range session.Manifest[key].DisplayNames() {
			names = append(names, fmt.Sprintf("%s: %s", spec.Label, display))
		}
	}

	text = fmt.Sprintf(`Aanvraag Beveiligingspas
========================

Datum: %s

Medewerker: %s
Bedrijf: %s
Vergunningnummer: %s %s
Datum aanvraag: %s
Type aanvraag: %s
Afdeling: %s

Bijlagen:
%s

---
BELANGRIJK: Antwoord op deze email wordt verwacht op: %s
---
`, sentAt, f.FullName(), f.Bedrijfsnaam, f.VergunningType, f.VergunningNr,
		f.DatumAanvraag, f.TypeAanvraag, f.Afdeling,
		"- "+strings.Join(names, "\n- "), session.OwnerEmail)

	items := &strings.Builder{}
	for _, n := range names {
		fmt.Fprintf(items, "<li>%s</li>", n)
	}

	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
%s<h2>Aanvraag Beveiligingspas</h2>
<p><strong>Datum:</strong> %s</p>
<p><strong>Medewerker:</strong> %s<br>
<strong>Bedrijf:</strong> %s<br>
<strong>Vergunningnummer:</strong> %s %s<br>
<strong>Datum aanvraag:</strong> %s<br>
<strong>Type aanvraag:</strong> %s<br>
<strong>Afdeling:</strong> %s</p>
<h3>Bijlagen</h3>
<ul>%s</ul>
<p><strong>Belangrijk:</strong> antwoord op deze email wordt verwacht op
<a href="mailto:%s">%s</a></p>
</body>
</html>`, logoImg, sentAt, f.FullName(), f.Bedrijfsnaam, f.VergunningType, f.VergunningNr,
		f.DatumAanvraag, f.TypeAanvraag, f.Afdeling, items.String(),
		session.OwnerEmail, session.OwnerEmail)
	return text, html
}

func (s *DispatchService) confirmationBody(session *models.SubmissionSession) (text, html string) {
	f := session.Fields
	sentAt := s.now().Format("02-01-2006 15:04")

	text = fmt.Sprintf(`Bevestiging aanvraag Beveiligingspas
====================================

Beste %s,

Uw aanvraag voor een beveiligingspas is verzonden naar de afdeling
Korpscheftaken.

- Medewerker: %s
- Bedrijf: %s
- Afdeling: %s
- Datum verzending: %s
- Verzonden naar: %s

U ontvangt een reactie van de afdeling Korpscheftaken zodra uw aanvraag is
verwerkt.
`, f.FullName(), f.FullName(), f.Bedrijfsnaam, f.Afdeling, sentAt, f.EmailAfdeling)

	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
<h2>Bevestiging aanvraag Beveiligingspas</h2>
<p>Beste %s,</p>
<p>Uw aanvraag voor een beveiligingspas is verzonden naar de afdeling
Korpscheftaken.</p>
<p><strong>Medewerker:</strong> %s<br>
<strong>Bedrijf:</strong> %s<br>
<strong>Afdeling:</strong> %s<br>
<strong>Datum verzending:</strong> %s<br>
<strong>Verzonden naar:</strong> %s</p>
<p>U ontvangt een reactie van de afdeling Korpscheftaken zodra uw aanvraag is
verwerkt.</p>
</body>
</html>`, f.FullName(), f.FullName(), f.Bedrijfsnaam, f.Afdeling, sentAt, f.EmailAfdeling)
	return text, html
}

func newTrackingToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
