package document

import (
	"fmt"
	"strings"

	"resumatch/internal/errors"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the plain text layer of a PDF
type PDFExtractor struct{}

// ExtractText joins the text of every page with newlines and trims the result
func (PDFExtractor) ExtractText(path string) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", extractionError(path, fmt.Errorf("%v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", extractionError(path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", extractionError(path, fmt.Errorf("page %d: %w", i, err))
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func extractionError(path string, cause error) error {
	return errors.NewIOError(errors.ErrCodePDFExtraction,
		fmt.Sprintf("Error extracting text from PDF: %s", path), cause)
}
