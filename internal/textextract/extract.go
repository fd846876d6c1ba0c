package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"veritext/internal/services"
)

// Extract reads the file at path and returns its text content. Dispatch is by
// extension: .txt, .pdf, and .docx are supported. Plain text is decoded as
// UTF-8 with a Latin-1 fallback so extraction never fails on encoding alone.
func Extract(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrNotFound, "extract", "stat", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return extractTXT(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return "", services.Wrap(services.ErrUnsupportedFormat, "extract", "dispatch",
			ext+" (supported: .txt, .pdf, .docx)", nil)
	}
}

func extractTXT(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "txt", path, err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "txt", "latin-1 fallback", err)
	}
	return string(decoded), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "pdf", "open", err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", services.Wrap(services.ErrExtraction, "extract", "pdf", "no extractable text", nil)
	}
	return b.String(), nil
}

func extractDOCX(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "docx", "read", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "docx", "open zip", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, openErr := f.Open()
			if openErr != nil {
				return "", services.Wrap(services.ErrExtraction, "extract", "docx", "open document.xml", openErr)
			}
			xmlData, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", services.Wrap(services.ErrExtraction, "extract", "docx", "read document.xml", err)
			}
			break
		}
	}
	if len(xmlData) == 0 {
		return "", services.Wrap(services.ErrExtraction, "extract", "docx", "word/document.xml not found", nil)
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", services.Wrap(services.ErrExtraction, "extract", "docx", "decode document.xml", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
			if t.Name.Local == "p" && b.Len() > 0 {
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.WriteString(string(t))
			}
		}
	}
	return b.String(), nil
}
