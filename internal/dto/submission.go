package dto

import (
	"github.com/praesidion/wpbr-intake/internal/models"
)

// SubmitFormRequest carries the multipart form fields of a submission post.
// Checkbox fields arrive as raw strings and are normalized into the typed
// field map by the service.
type SubmitFormRequest struct {
	Bedrijfsnaam    string `form:"bedrijfsnaam" validate:"required"`
	StraatBedrijf   string `form:"straat_bedrijf"`
	PostcodeBedrijf string `form:"postcode_bedrijf"`
	PlaatsBedrijf   string `form:"plaats_bedrijf"`
	VergunningType  string `form:"vergunning_type"`
	VergunningNr    string `form:"vergunning_nummer"`
	EmailBedrijf    string `form:"email_bedrijf" validate:"omitempty,email"`
	TelefoonBedrijf string `form:"telefoon_bedrijf"`

	BSN              string `form:"bsn"`
	Voorvoegsel      string `form:"voorvoegsel"`
	Achternaam       string `form:"achternaam" validate:"required"`
	Voornamen        string `form:"voornamen" validate:"required"`
	Geboortedatum    string `form:"geboortedatum"`
	Geboorteplaats   string `form:"geboorteplaats"`
	Geboorteland     string `form:"geboorteland"`
	StraatMedewerker string `form:"straat_medewerker"`
	Huisnummer       string `form:"huisnummer"`
	PostcodeMedew    string `form:"postcode_medewerker"`
	Woonplaats       string `form:"woonplaats_medewerker"`
	TelefoonMedew    string `form:"telefoon_medewerker"`
	EmailMedewerker  string `form:"email_medewerker" validate:"omitempty,email"`

	SVPBNummer          string `form:"svpb_nummer"`
	FunctieGediplomeerd string `form:"functie_gediplomeerd"`
	EinddatumSVPB       string `form:"einddatum_svpb"`
	LatereBegindatum    string `form:"latere_begindatum"`
	Sinds               string `form:"sinds"`
	Organisatie         string `form:"organisatie"`
	Functie             string `form:"functie"`

	InOpleiding            string `form:"in_opleiding"`
	Persoonsbeveiliger     string `form:"persoonsbeveiliger"`
	IsOpsporingsambtenaar  string `form:"is_opsporingsambtenaar"`
	CertWinkelsurveillant  string `form:"certificaat_winkelsurveillant"`
	CertPersoonsbeveiliger string `form:"certificaat_persoonsbeveiliger"`

	NaamContactpersoon  string `form:"naam_contactpersoon"`
	PlaatsOndertekening string `form:"plaats_ondertekening"`
	DatumAanvraag       string `form:"datum_aanvraag"`
	TypeAanvraag        string `form:"type_aanvraag" validate:"required,oneof=eerste_aanvraag verlenging_aanvraag vervanging_aanvraag"`
	Afdeling            string `form:"afdeling_select" validate:"required"`
	EmailAfdeling       string `form:"email_opties_select" validate:"required,email"`
}

// ToFieldMap normalizes the raw form values into the typed schema.
func (r SubmitFormRequest) ToFieldMap() models.FieldMap {
	return models.FieldMap{
		Bedrijfsnaam:    r.Bedrijfsnaam,
		StraatBedrijf:   r.StraatBedrijf,
		PostcodeBedrijf: r.PostcodeBedrijf,
		PlaatsBedrijf:   r.PlaatsBedrijf,
		VergunningType:  r.VergunningType,
		VergunningNr:    r.VergunningNr,
		EmailBedrijf:    r.EmailBedrijf,
		TelefoonBedrijf: r.TelefoonBedrijf,

		BSN:              r.BSN,
		Voorvoegsel:      r.Voorvoegsel,
		Achternaam:       r.Achternaam,
		Voornamen:        r.Voornamen,
		Geboortedatum:    r.Geboortedatum,
		Geboorteplaats:   r.Geboorteplaats,
		Geboorteland:     r.Geboorteland,
		StraatMedewerker: r.StraatMedewerker,
		Huisnummer:       r.Huisnummer,
		PostcodeMedew:    r.PostcodeMedew,
		Woonplaats:       r.Woonplaats,
		TelefoonMedew:    r.TelefoonMedew,
		EmailMedewerker:  r.EmailMedewerker,

		SVPBNummer:          r.SVPBNummer,
		FunctieGediplomeerd: r.FunctieGediplomeerd,
		EinddatumSVPB:       r.EinddatumSVPB,
		LatereBegindatum:    r.LatereBegindatum,
		Sinds:               r.Sinds,
		Organisatie:         r.Organisatie,
		Functie:             r.Functie,

		InOpleiding:            models.Truthy(r.InOpleiding),
		Persoonsbeveiliger:     models.Truthy(r.Persoonsbeveiliger),
		IsOpsporingsambtenaar:  models.Truthy(r.IsOpsporingsambtenaar),
		CertWinkelsurveillant:  models.Truthy(r.CertWinkelsurveillant),
		CertPersoonsbeveiliger: models.Truthy(r.CertPersoonsbeveiliger),

		NaamContactpersoon:  r.NaamContactpersoon,
		PlaatsOndertekening: r.PlaatsOndertekening,
		DatumAanvraag:       r.DatumAanvraag,
		TypeAanvraag:        r.TypeAanvraag,
		Afdeling:            r.Afdeling,
		EmailAfdeling:       r.EmailAfdeling,
	}
}

// AttachmentView is one staged file in review output.
type AttachmentView struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	DisplayName string `json:"display_name"`
	StorageName string `json:"storage_name"`
	Resized     bool   `json:"resized"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	OrigWidth   int    `json:"orig_width,omitempty"`
	OrigHeight  int    `json:"orig_height,omitempty"`
}

// SessionView is the session as returned to the client.
type SessionView struct {
	ID            string              `json:"id"`
	State         models.SessionState `json:"state"`
	Fields        models.FieldMap     `json:"fields"`
	Attachments   []AttachmentView    `json:"attachments"`
	MergeFilename string              `json:"merge_filename,omitempty"`
	LastActivity  string              `json:"last_activity"`
}

// ReviewView adds the generated-document handles available during review.
type ReviewView struct {
	SessionView
	DownloadToken string `json:"download_token,omitempty"`
}

// SendResult reports the outcome of a send action.
type SendResult struct {
	SubmissionID string `json:"submission_id"`
	SentTo       string `json:"sent_to"`
	Confirmation bool   `json:"confirmation_sent"`
}

// RegionView is one entry of the destination registry.
type RegionView struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}
