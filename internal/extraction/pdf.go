package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/service"
)

var _ service.ExtractionClient = (*PDFExtractor)(nil)

// PDFExtractor extracts plain text from PDF documents.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract pulls the text from every readable page of the document.
// A PDF with no extractable text, such as a pure image scan, is
// treated as an extraction failure.
func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (*service.ExtractResult, error) {
	if len(content) == 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "empty document content", domain.ErrExtractionFailed)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, fmt.Sprintf("failed to open pdf: %v", err), domain.ErrExtractionFailed)
	}

	var text strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	extracted := strings.TrimSpace(text.String())
	if extracted == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "document contains no extractable text", domain.ErrExtractionFailed)
	}

	return &service.ExtractResult{
		Text:      extracted,
		PageCount: pageCount,
	}, nil
}
