package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, doc []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestMergeBytesReplacesPlaceholders(t *testing.T) {
	tpl := buildTestDocx(t, map[string]string{
		"word/document.xml": `<w:p><w:r><w:t>Achternaam: {{achternaam}}</w:t></w:r>` +
			`<w:r><w:t>In opleiding: {{in_opleiding}}</w:t></w:r></w:p>`,
		"word/header1.xml": `<w:t>{{bedrijfsnaam}}</w:t>`,
	})

	out, err := MergeBytes(tpl, map[string]string{
		"achternaam":   "Jansen",
		"in_opleiding": "☒",
		"bedrijfsnaam": "Praesidion B.V.",
	})
	require.NoError(t, err)

	body := readPart(t, out, "word/document.xml")
	assert.Contains(t, body, "Achternaam: Jansen")
	assert.Contains(t, body, "In opleiding: ☒")
	assert.NotContains(t, body, "{{")

	header := readPart(t, out, "word/header1.xml")
	assert.Contains(t, header, "Praesidion B.V.")
}

func TestMergeBytesBlanksUnknownPlaceholders(t *testing.T) {
	tpl := buildTestDocx(t, map[string]string{
		"word/document.xml": `<w:t>Voorvoegsel: {{voorvoegsel}}.</w:t>`,
	})

	out, err := MergeBytes(tpl, map[string]string{})
	require.NoError(t, err)

	body := readPart(t, out, "word/document.xml")
	assert.Contains(t, body, "Voorvoegsel: .")
	assert.NotContains(t, body, "{{voorvoegsel}}")
}

func TestMergeBytesEscapesXMLInValues(t *testing.T) {
	tpl := buildTestDocx(t, map[string]string{
		"word/document.xml": `<w:t>{{bedrijfsnaam}}</w:t>`,
	})

	out, err := MergeBytes(tpl, map[string]string{
		"bedrijfsnaam": `Smit & Zonen <Beveiliging>`,
	})
	require.NoError(t, err)

	body := readPart(t, out, "word/document.xml")
	assert.Contains(t, body, "Smit &amp; Zonen &lt;Beveiliging&gt;")
	assert.NotContains(t, body, "Smit & Zonen <")
}

func TestMergeBytesLeavesNonTextPartsAlone(t *testing.T) {
	tpl := buildTestDocx(t, map[string]string{
		"word/document.xml":    `<w:t>{{achternaam}}</w:t>`,
		"word/styles.xml":      `<w:style>{{achternaam}}</w:style>`,
		"docProps/core.xml":    `<dc:title>{{achternaam}}</dc:title>`,
		"[Content_Types].xml":  `<Types/>`,
		"word/media/image.png": "binary {{achternaam}} bytes",
	})

	out, err := MergeBytes(tpl, map[string]string{"achternaam": "Jansen"})
	require.NoError(t, err)

	assert.Equal(t, "<w:t>Jansen</w:t>", readPart(t, out, "word/document.xml"))
	assert.Contains(t, readPart(t, out, "word/styles.xml"), "{{achternaam}}")
	assert.Contains(t, readPart(t, out, "docProps/core.xml"), "{{achternaam}}")
	assert.Contains(t, readPart(t, out, "word/media/image.png"), "{{achternaam}}")
}

func TestMergeBytesRejectsNonZipInput(t *testing.T) {
	_, err := MergeBytes([]byte("not a zip archive"), nil)
	require.Error(t, err)
}
