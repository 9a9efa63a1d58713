package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	for _, raw := range []string{"on", "true", "ja", "1"} {
		assert.True(t, Truthy(raw), raw)
	}
	for _, raw := range []string{"", "off", "nee", "0", "yes", "Ja", "ON"} {
		assert.False(t, Truthy(raw), raw)
	}
}

func TestTemplateDataCheckboxes(t *testing.T) {
	fields := FieldMap{
		Achternaam:            "Jansen",
		InOpleiding:           true,
		CertWinkelsurveillant: true,
		TypeAanvraag:          RequestRenewal,
	}
	manifest := UploadManifest{
		KeyPasfoto: SingleAttachment(StoredFile{StorageName: "a1b2_pasfoto_resized.jpg", DisplayName: "foto.jpg"}),
	}

	data := fields.TemplateData(manifest)

	assert.Equal(t, "Jansen", data["achternaam"])
	assert.Equal(t, "ja", data["in_opleiding"])
	assert.Equal(t, "", data["persoonsbeveiliger"])
	assert.Equal(t, CheckedGlyph, data["certificaat_winkelsurveillant"])
	assert.Equal(t, CheckedGlyph, data["verlenging_aanvraag"])
	assert.Equal(t, "", data["eerste_aanvraag"])
	assert.Equal(t, "", data["vervanging_aanvraag"])
	assert.Equal(t, CheckedGlyph, data["bijlagen_pasfoto"])
	assert.Equal(t, "", data["bijlagen_id"])
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &SubmissionSession{LastActivity: now.Add(-31 * time.Minute)}
	assert.True(t, s.Expired(now, 30*time.Minute))

	s.Touch(now)
	assert.False(t, s.Expired(now, 30*time.Minute))
}

func TestManifestStorageNamesFormOrder(t *testing.T) {
	m := UploadManifest{
		KeyPV: SingleAttachment(StoredFile{StorageName: "pv.pdf"}),
		KeyID: MultiAttachment([]StoredFile{
			{StorageName: "id-voor.jpg"},
			{StorageName: "id-achter.jpg"},
		}),
	}

	assert.Equal(t, []string{"id-voor.jpg", "id-achter.jpg", "pv.pdf"}, m.StorageNames())
	assert.True(t, m.Has(KeyID))
	assert.False(t, m.Has(KeyPasfoto))
}

func TestManifestCloneIsIndependent(t *testing.T) {
	m := UploadManifest{
		KeyID: MultiAttachment([]StoredFile{{StorageName: "id.jpg", DisplayName: "id.jpg"}}),
	}
	clone := m.Clone()
	clone[KeyID].Files[0].StorageName = "changed.jpg"

	assert.Equal(t, "id.jpg", m[KeyID].Files[0].StorageName)
}

func TestRegionAllows(t *testing.T) {
	assert.True(t, RegionAllows("Amsterdam", "ATK.WPBR.korpscheftaken.amsterdam@politie.nl"))
	assert.False(t, RegionAllows("Amsterdam", "ATK.WPBR.korpscheftaken.limburg@politie.nl"))
	assert.False(t, RegionAllows("Elders", "ATK.WPBR.korpscheftaken.amsterdam@politie.nl"))
}
