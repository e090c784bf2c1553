// Package textextract turns stored source documents into plain text. The
// route is chosen by file extension: UTF-8 text is read directly, PDFs go
// through the text layer, images go to the vision provider when one is
// configured.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/core/ports"
)

// Confidence per extraction route. Direct text reads are exact; the PDF text
// layer occasionally drops ligatures; OCR output is the least reliable.
const (
	confidencePlain = 1.0
	confidencePDF   = 0.9
	confidenceOCR   = 0.7
)

type Extractor struct {
	storage ports.ObjectStorage
	vision  ports.AssistProvider
}

// NewExtractor builds the routing extractor. The vision provider may be nil;
// image documents are then rejected as unsupported.
func NewExtractor(storage ports.ObjectStorage, vision ports.AssistProvider) *Extractor {
	return &Extractor{storage: storage, vision: vision}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, float64, error) {
	raw, err := e.readSource(ctx, doc)
	if err != nil {
		return "", 0, err
	}

	switch route(doc.Filename) {
	case routePlain:
		return e.extractPlain(doc, raw)
	case routePDF:
		return e.extractPDF(doc, raw)
	case routeImage:
		return e.extractImage(ctx, doc, raw)
	default:
		return "", 0, domain.WrapError(domain.ErrUnsupportedFile, "route document",
			fmt.Errorf("unsupported file type: %s", doc.Filename))
	}
}

func (e *Extractor) readSource(ctx context.Context, doc *domain.Document) ([]byte, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return raw, nil
}

func (e *Extractor) extractPlain(doc *domain.Document, raw []byte) (string, float64, error) {
	if !utf8.Valid(raw) {
		return "", 0, domain.WrapError(domain.ErrUnsupportedFile, "read text",
			fmt.Errorf("file %s is not valid UTF-8", doc.Filename))
	}
	return strings.TrimSpace(string(raw)), confidencePlain, nil
}

func (e *Extractor) extractPDF(doc *domain.Document, raw []byte) (string, float64, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", 0, fmt.Errorf("parse pdf %s: %w", doc.Filename, err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String()), confidencePDF, nil
}

func (e *Extractor) extractImage(ctx context.Context, doc *domain.Document, raw []byte) (string, float64, error) {
	if e.vision == nil {
		return "", 0, domain.WrapError(domain.ErrUnsupportedFile, "ocr image",
			fmt.Errorf("no vision provider configured for %s", doc.Filename))
	}
	text, err := e.vision.ExtractImageText(ctx, raw, doc.MimeType, doc.Language)
	if err != nil {
		return "", 0, fmt.Errorf("vision ocr for %s: %w", doc.Filename, err)
	}
	return strings.TrimSpace(text), confidenceOCR, nil
}

type extractionRoute int

const (
	routeUnsupported extractionRoute = iota
	routePlain
	routePDF
	routeImage
)

func route(filename string) extractionRoute {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".csv":
		return routePlain
	case ".pdf":
		return routePDF
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp":
		return routeImage
	default:
		return routeUnsupported
	}
}

// SupportedExtension reports whether uploads with this filename can ever be
// processed. The HTTP layer rejects everything else before storage.
func SupportedExtension(filename string) bool {
	return route(filename) != routeUnsupported
}
