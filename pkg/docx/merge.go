// Package docx fills {{placeholder}} tokens in a .docx template by rewriting
// the XML parts of the zip container. Tokens must live inside a single text
// run; Word keeps hand-authored tokens in one run as long as the template is
// typed without intermediate formatting changes.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Merge loads the template at path and substitutes every {{token}} in the
// document body, headers and footers with the matching value. Tokens without
// a value are replaced by the empty string, never left in the output.
func Merge(path string, values map[string]string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return MergeBytes(raw, values)
}

// MergeBytes is Merge over an in-memory template.
func MergeBytes(template []byte, values map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("open template container: %w", err)
	}

	out := &bytes.Buffer{}
	zw := zip.NewWriter(out)

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}

		if substitutable(f.Name) {
			data = substitute(data, values)
		}

		hdr := f.FileHeader
		hdr.CompressedSize64 = 0
		hdr.UncompressedSize64 = 0
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close container: %w", err)
	}
	return out.Bytes(), nil
}

// substitutable reports whether a zip part carries visible document text.
func substitutable(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

func substitute(part []byte, values map[string]string) []byte {
	return placeholderRe.ReplaceAllFunc(part, func(m []byte) []byte {
		key := string(placeholderRe.FindSubmatch(m)[1])
		return []byte(escapeXML(values[key]))
	})
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}
