package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PdfParser struct{}

var _ Parser = &PdfParser{}

// Parse extracts the plain text of every page. Pages that fail to decode
// are skipped rather than failing the whole document.
func (p *PdfParser) Parse(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return result, nil
}

// ParseReader is a convenience wrapper for streamed downloads.
func (p *PdfParser) ParseReader(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf stream: %w", err)
	}
	return p.Parse(content)
}
