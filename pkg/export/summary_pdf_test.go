package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryExporterRender(t *testing.T) {
	exporter := NewSummaryExporter()
	sections := []Section{
		{
			Title: "Gegevens medewerker",
			Rows: []Row{
				{Label: "Achternaam", Value: "Jansen"},
				{Label: "Voornamen", Value: "Pieter Cornelis"},
				{Label: "Geboorteplaats", Value: ""},
			},
		},
		{
			Title: "Bijlagen",
			Rows: []Row{
				{Label: "Kopie identiteitsbewijs", Value: "id-voor.jpg, id-achter.jpg"},
			},
		},
	}

	data, err := exporter.Render("Aanvraag toestemming beveiligingsmedewerker", sections)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestSummaryExporterRequiresSections(t *testing.T) {
	exporter := NewSummaryExporter()
	_, err := exporter.Render("Aanvraag", nil)
	assert.Error(t, err)
}
