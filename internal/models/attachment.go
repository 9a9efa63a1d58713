package models

import (
	"github.com/praesidion/wpbr-intake/pkg/imaging"
)

// AttachmentKey identifies one upload slot on the form.
type AttachmentKey string

const (
	KeyID            AttachmentKey = "id_file"
	KeyPasfoto       AttachmentKey = "pasfoto_file"
	KeyHandtekening  AttachmentKey = "handtekening_file"
	KeyLogo          AttachmentKey = "logo_file"
	KeySVPB          AttachmentKey = "svpb_file"
	KeyHoreca        AttachmentKey = "horeca_file"
	KeyVoetbal       AttachmentKey = "voetbal_file"
	KeyStrafBelgie   AttachmentKey = "straf_belgie_file"
	KeyFuhrung       AttachmentKey = "fuhrung_file"
	KeyStrafHerkomst AttachmentKey = "straf_herkomst_file"
	KeyPV            AttachmentKey = "pv_file"
)

// AttachmentKeys lists every slot in form order. The identity document comes
// first and is the only slot accepting multiple files.
var AttachmentKeys = []AttachmentKey{
	KeyID,
	KeyPasfoto,
	KeyHandtekening,
	KeyLogo,
	KeySVPB,
	KeyHoreca,
	KeyVoetbal,
	KeyStrafBelgie,
	KeyFuhrung,
	KeyStrafHerkomst,
	KeyPV,
}

// AttachmentSpec describes validation and handling for one slot.
type AttachmentSpec struct {
	Key         AttachmentKey
	Label       string
	Multiple    bool
	AllowedExts []string
	// Bounds is set for the three photo-like slots that go through the
	// image normalizer; nil means the file is stored as-is.
	Bounds *imaging.Bounds
}

var (
	imageExts    = []string{".jpg", ".jpeg", ".png"}
	documentExts = []string{".jpg", ".jpeg", ".png", ".pdf", ".docx"}
	identityExts = []string{".jpg", ".jpeg", ".png", ".pdf"}

	pasfotoBounds      = imaging.Bounds{MinW: 276, MinH: 355, MaxW: 551, MaxH: 709}
	handtekeningBounds = imaging.Bounds{MinW: 354, MinH: 108, MaxW: 945, MaxH: 287}
	logoBounds         = imaging.Bounds{MinW: 315, MinH: 127, MaxW: 945, MaxH: 382}
)

var attachmentSpecs = map[AttachmentKey]AttachmentSpec{
	KeyID: {
		Key:         KeyID,
		Label:       "Kopie identiteitsbewijs",
		Multiple:    true,
		AllowedExts: identityExts,
	},
	KeyPasfoto: {
		Key:         KeyPasfoto,
		Label:       "Pasfoto",
		AllowedExts: imageExts,
		Bounds:      &pasfotoBounds,
	},
	KeyHandtekening: {
		Key:         KeyHandtekening,
		Label:       "Handtekening",
		AllowedExts: imageExts,
		Bounds:      &handtekeningBounds,
	},
	KeyLogo: {
		Key:         KeyLogo,
		Label:       "Bedrijfslogo",
		AllowedExts: imageExts,
		Bounds:      &logoBounds,
	},
	KeySVPB: {
		Key:         KeySVPB,
		Label:       "SVPB-diploma of cijferlijst",
		AllowedExts: documentExts,
	},
	KeyHoreca: {
		Key:         KeyHoreca,
		Label:       "Certificaat Horecaportier",
		AllowedExts: documentExts,
	},
	KeyVoetbal: {
		Key:         KeyVoetbal,
		Label:       "Certificaat Voetbalsteward",
		AllowedExts: documentExts,
	},
	KeyStrafBelgie: {
		Key:         KeyStrafBelgie,
		Label:       "Uittreksel strafregister België",
		AllowedExts: documentExts,
	},
	KeyFuhrung: {
		Key:         KeyFuhrung,
		Label:       "Führungszeugnis Duitsland",
		AllowedExts: documentExts,
	},
	KeyStrafHerkomst: {
		Key:         KeyStrafHerkomst,
		Label:       "Verklaring omtrent gedrag land van herkomst",
		AllowedExts: documentExts,
	},
	KeyPV: {
		Key:         KeyPV,
		Label:       "Proces-verbaal of vonnis",
		AllowedExts: documentExts,
	},
}

// SpecFor resolves the handling rules for a slot. The second return is false
// for keys that are not part of the form.
func SpecFor(key AttachmentKey) (AttachmentSpec, bool) {
	spec, ok := attachmentSpecs[key]
	return spec, ok
}

// StoredFile is one staged file under a slot.
type StoredFile struct {
	// StorageName is the name on disk inside the staging area; unique per
	// session, possibly carrying a collision suffix or _resized marker.
	StorageName string `json:"storage_name"`
	// DisplayName is the name the uploader chose, shown in review output
	// and used for mail attachments.
	DisplayName string `json:"display_name"`
	Resized     bool   `json:"resized,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	OrigWidth   int    `json:"orig_width,omitempty"`
	OrigHeight  int    `json:"orig_height,omitempty"`
}

// Attachment holds the staged files for one slot.
type Attachment struct {
	Multiple bool         `json:"multiple"`
	Files    []StoredFile `json:"files"`
}

// SingleAttachment wraps one file for a single-valued slot.
func SingleAttachment(f StoredFile) Attachment {
	return Attachment{Files: []StoredFile{f}}
}

// MultiAttachment wraps the file list for a list-valued slot.
func MultiAttachment(files []StoredFile) Attachment {
	return Attachment{Multiple: true, Files: files}
}

// First returns the leading file, or a zero StoredFile when empty.
func (a Attachment) First() StoredFile {
	if len(a.Files) == 0 {
		return StoredFile{}
	}
	return a.Files[0]
}

// DisplayNames lists the uploader-facing names in order.
func (a Attachment) DisplayNames() []string {
	names := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		names = append(names, f.DisplayName)
	}
	return names
}

// UploadManifest maps slots to their staged files for one session.
type UploadManifest map[AttachmentKey]Attachment

// StorageNames lists every on-disk name across all slots, in form order.
func (m UploadManifest) StorageNames() []string {
	var names []string
	for _, key := range AttachmentKeys {
		att, ok := m[key]
		if !ok {
			continue
		}
		for _, f := range att.Files {
			names = append(names, f.StorageName)
		}
	}
	return names
}

// Has reports whether the slot holds at least one file.
func (m UploadManifest) Has(key AttachmentKey) bool {
	att, ok := m[key]
	return ok && len(att.Files) > 0
}

// Clone deep-copies the manifest so session snapshots stay independent.
func (m UploadManifest) Clone() UploadManifest {
	if m == nil {
		return nil
	}
	out := make(UploadManifest, len(m))
	for key, att := range m {
		files := make([]StoredFile, len(att.Files))
		copy(files, att.Files)
		out[key] = Attachment{Multiple: att.Multiple, Files: files}
	}
	return out
}
