package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Parser extracts plain text from an uploaded document.
type Parser interface {
	Parse(content []byte) (string, error)
}

// ParserFor returns the parser matching the file extension.
// Plain text is the fallback for unknown extensions.
func ParserFor(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PdfParser{}, nil
	case ".txt", ".md", "":
		return &PlainTextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filename)
	}
}

type PlainTextParser struct{}

func (p *PlainTextParser) Parse(content []byte) (string, error) {
	return string(content), nil
}
