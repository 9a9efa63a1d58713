package models

import "time"

// SessionState is the lifecycle phase of a submission session.
type SessionState string

const (
	StateEmpty     SessionState = "empty"
	StateEditing   SessionState = "editing"
	StateReviewing SessionState = "reviewing"
	StateSending   SessionState = "sending"
	StateConfirmed SessionState = "confirmed"
)

// RequestType values match the form's type_aanvraag options.
const (
	RequestFirst       = "eerste_aanvraag"
	RequestRenewal     = "verlenging_aanvraag"
	RequestReplacement = "vervanging_aanvraag"
)

// CheckedGlyph marks a ticked checkbox in generated documents.
const CheckedGlyph = "☒"

// Truthy reports whether a raw form value counts as a checked checkbox.
// Normalization happens once at ingestion; everything downstream reads the
// resulting booleans.
func Truthy(raw string) bool {
	switch raw {
	case "on", "true", "ja", "1":
		return true
	}
	return false
}

// FieldMap is the fixed schema of submitted form fields. String fields keep
// the submitted text verbatim; checkbox fields are normalized booleans.
type FieldMap struct {
	// Company block.
	Bedrijfsnaam    string `json:"bedrijfsnaam"`
	StraatBedrijf   string `json:"straat_bedrijf"`
	PostcodeBedrijf string `json:"postcode_bedrijf"`
	PlaatsBedrijf   string `json:"plaats_bedrijf"`
	VergunningType  string `json:"vergunning_type"`
	VergunningNr    string `json:"vergunning_nummer"`
	EmailBedrijf    string `json:"email_bedrijf"`
	TelefoonBedrijf string `json:"telefoon_bedrijf"`

	// Employee block.
	BSN               string `json:"bsn"`
	Voorvoegsel       string `json:"voorvoegsel"`
	Achternaam        string `json:"achternaam"`
	Voornamen         string `json:"voornamen"`
	Geboortedatum     string `json:"geboortedatum"`
	Geboorteplaats    string `json:"geboorteplaats"`
	Geboorteland      string `json:"geboorteland"`
	StraatMedewerker  string `json:"straat_medewerker"`
	Huisnummer        string `json:"huisnummer"`
	PostcodeMedew     string `json:"postcode_medewerker"`
	Woonplaats        string `json:"woonplaats_medewerker"`
	TelefoonMedew     string `json:"telefoon_medewerker"`
	EmailMedewerker   string `json:"email_medewerker"`

	// SVPB / qualification block.
	SVPBNummer          string `json:"svpb_nummer"`
	FunctieGediplomeerd string `json:"functie_gediplomeerd"`
	EinddatumSVPB       string `json:"einddatum_svpb"`
	LatereBegindatum    string `json:"latere_begindatum"`
	Sinds               string `json:"sinds"`
	Organisatie         string `json:"organisatie"`
	Functie             string `json:"functie"`

	// Checkboxes, normalized at ingestion.
	InOpleiding            bool `json:"in_opleiding"`
	Persoonsbeveiliger     bool `json:"persoonsbeveiliger"`
	IsOpsporingsambtenaar  bool `json:"is_opsporingsambtenaar"`
	CertWinkelsurveillant  bool `json:"certificaat_winkelsurveillant"`
	CertPersoonsbeveiliger bool `json:"certificaat_persoonsbeveiliger"`

	// Signing and routing block.
	NaamContactpersoon string `json:"naam_contactpersoon"`
	PlaatsOndertekening string `json:"plaats_ondertekening"`
	DatumAanvraag      string `json:"datum_aanvraag"`
	TypeAanvraag       string `json:"type_aanvraag"`
	Afdeling           string `json:"afdeling_select"`
	EmailAfdeling      string `json:"email_opties_select"`
}

// FullName joins the employee's given names and surname for display.
func (f FieldMap) FullName() string {
	name := f.Voornamen
	if name != "" && f.Achternaam != "" {
		return name + " " + f.Achternaam
	}
	return name + f.Achternaam
}

// IsEmpty reports whether nothing meaningful was submitted yet.
func (f FieldMap) IsEmpty() bool {
	return f == FieldMap{}
}

func jaIf(b bool) string {
	if b {
		return "ja"
	}
	return ""
}

func glyphIf(b bool) string {
	if b {
		return CheckedGlyph
	}
	return ""
}

// TemplateData flattens the field map into the placeholder values of the
// merge template. Checkbox slots render as a checked-box glyph or empty;
// a few legacy fields render as the word "ja". The bijlagen_* placeholders
// follow the staged manifest rather than separate form checkboxes, so the
// document can never claim an attachment that was not actually uploaded.
func (f FieldMap) TemplateData(manifest UploadManifest) map[string]string {
	return map[string]string{
		"bedrijfsnaam":     f.Bedrijfsnaam,
		"straat_bedrijf":   f.StraatBedrijf,
		"postcode_bedrijf": f.PostcodeBedrijf,
		"plaats_bedrijf":   f.PlaatsBedrijf,
		"vergunning_type":  f.VergunningType,
		"vergunning_nummer": f.VergunningNr,
		"email_bedrijf":    f.EmailBedrijf,
		"telefoon_bedrijf": f.TelefoonBedrijf,

		"bsn":                 f.BSN,
		"voorvoegsel":         f.Voorvoegsel,
		"achternaam":          f.Achternaam,
		"voornamen":           f.Voornamen,
		"geboortedatum":       f.Geboortedatum,
		"geboorteplaats":      f.Geboorteplaats,
		"geboorteland":        f.Geboorteland,
		"straat_medewerker":   f.StraatMedewerker,
		"huisnummer":          f.Huisnummer,
		"postcode_medewerker": f.PostcodeMedew,
		"woonplaats":          f.Woonplaats,
		"telefoon_medewerker": f.TelefoonMedew,
		"email_medewerker":    f.EmailMedewerker,

		"svpb_nummer":          f.SVPBNummer,
		"functie_gediplomeerd": f.FunctieGediplomeerd,
		"einddatum_svpb":       f.EinddatumSVPB,
		"latere_begindatum":    f.LatereBegindatum,
		"sinds":                f.Sinds,
		"organisatie":          f.Organisatie,
		"functie":              f.Functie,

		"in_opleiding":                   jaIf(f.InOpleiding),
		"persoonsbeveiliger":             jaIf(f.Persoonsbeveiliger),
		"is_opsporingsambtenaar":         jaIf(f.IsOpsporingsambtenaar),
		"certificaat_winkelsurveillant":  glyphIf(f.CertWinkelsurveillant),
		"certificaat_persoonsbeveiliger": jaIf(f.CertPersoonsbeveiliger),

		"naam_contactpersoon": f.NaamContactpersoon,
		"plaats_ondertekening": f.PlaatsOndertekening,
		"datum_aanvraag":      f.DatumAanvraag,

		"eerste_aanvraag":     glyphIf(f.TypeAanvraag == RequestFirst),
		"verlenging_aanvraag": glyphIf(f.TypeAanvraag == RequestRenewal),
		"vervanging_aanvraag": glyphIf(f.TypeAanvraag == RequestReplacement),

		"bijlagen_id":             glyphIf(manifest.Has(KeyID)),
		"bijlagen_pasfoto":        glyphIf(manifest.Has(KeyPasfoto)),
		"bijlagen_handtekening":   glyphIf(manifest.Has(KeyHandtekening)),
		"bijlagen_logo":           glyphIf(manifest.Has(KeyLogo)),
		"bijlagen_svpb":           glyphIf(manifest.Has(KeySVPB)),
		"bijlagen_horeca":         glyphIf(manifest.Has(KeyHoreca)),
		"bijlagen_voetbal":        glyphIf(manifest.Has(KeyVoetbal)),
		"bijlagen_straf_belgie":   glyphIf(manifest.Has(KeyStrafBelgie)),
		"bijlagen_fuhrung":        glyphIf(manifest.Has(KeyFuhrung)),
		"bijlagen_straf_herkomst": glyphIf(manifest.Has(KeyStrafHerkomst)),
		"bijlagen_pv":             glyphIf(manifest.Has(KeyPV)),

		"bijlagen_certificaat_winkelsurveillant": glyphIf(f.CertWinkelsurveillant),
	}
}

// SubmissionSession is the per-user working state of one application. Stored
// as JSON in redis, keyed by the owner; at most one live session per owner.
type SubmissionSession struct {
	ID            string            `json:"id"`
	OwnerID       string            `json:"owner_id"`
	OwnerEmail    string            `json:"owner_email"`
	State         SessionState      `json:"state"`
	Fields        FieldMap          `json:"fields"`
	Manifest      UploadManifest    `json:"manifest"`
	SummaryPath   string            `json:"summary_path,omitempty"`
	MergePath     string            `json:"merge_path,omitempty"`
	MergeFilename string            `json:"merge_filename,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	LastActivity  time.Time         `json:"last_activity"`
}

// Expired reports whether the session passed its inactivity window.
func (s *SubmissionSession) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// Touch records activity.
func (s *SubmissionSession) Touch(now time.Time) {
	s.LastActivity = now
}
