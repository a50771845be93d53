// Package document turns resume files into plain text.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumatch/internal/errors"
)

// Extractor reads the text of a document on disk
type Extractor interface {
	ExtractText(path string) (string, error)
}

var textExtensions = []string{".txt", ".md", ".markdown", ".text"}

// AutoExtractor picks an extractor from the file extension
type AutoExtractor struct {
	PDF  Extractor
	Text Extractor
}

// NewAutoExtractor handles PDF and plain-text resumes
func NewAutoExtractor() *AutoExtractor {
	return &AutoExtractor{PDF: PDFExtractor{}, Text: TextExtractor{}}
}

// ExtractText validates path and dispatches on its extension
func (a *AutoExtractor) ExtractText(path string) (string, error) {
	if err := ValidateInputFile(path); err != nil {
		return "", err
	}

	switch ext := Extension(path); {
	case ext == ".pdf":
		return a.PDF.ExtractText(path)
	case slices.Contains(textExtensions, ext):
		return a.Text.ExtractText(path)
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("Unsupported document type %q (use .pdf or .txt)", ext), nil).
			WithContext("filename", filepath.Base(path))
	}
}

// Supported reports whether name has an extension AutoExtractor handles
func Supported(name string) bool {
	ext := Extension(name)
	return ext == ".pdf" || slices.Contains(textExtensions, ext)
}

// Extension returns the file extension in lowercase
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ValidateInputFile checks that path names a readable regular file
func ValidateInputFile(path string) error {
	if path == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidInput, "filename cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return errors.NewIOError(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("Cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Path is a directory, not a file: %s", path), nil)
	}
	return nil
}

// ExtractFromReader spools r to a temporary file named like name and
// extracts it. The temporary file is removed on every path.
func ExtractFromReader(e Extractor, r io.Reader, name string) (text string, err error) {
	tmp, err := os.CreateTemp("", "resumatch-*"+Extension(name))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileReadFailed, "Cannot create temporary file", err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && err == nil && !os.IsNotExist(rmErr) {
			err = errors.NewIOError(errors.ErrCodeFileReadFailed, "Cannot remove temporary file", rmErr)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("Cannot buffer upload %s", name), err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("Cannot buffer upload %s", name), err)
	}

	text, err = e.ExtractText(tmp.Name())
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			appErr.WithContext("filename", name)
		}
		return "", err
	}
	return text, nil
}
