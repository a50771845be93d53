package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumatch/internal/document"
	"resumatch/internal/errors"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	extractor document.Extractor
	logger    *errors.Logger
}

// NewFileProcessor creates a file processor that reads PDF and text resumes
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return NewFileProcessorWithExtractor(document.NewAutoExtractor(), logger)
}

// NewFileProcessorWithExtractor creates a file processor with a custom extractor
func NewFileProcessorWithExtractor(extractor document.Extractor, logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &FileProcessor{extractor: extractor, logger: logger}
}

// ReadResume extracts the raw text of a resume file
func (fp *FileProcessor) ReadResume(filename string) (string, error) {
	text, err := fp.extractor.ExtractText(filename)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		fp.logger.Warn("Document contains no extractable text", "filename", filename)
	}
	return text, nil
}

// ValidateAndReadFiles validates and extracts multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if !document.Supported(filename) {
			return nil, errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
				fmt.Sprintf("Unsupported document type: %s", filename), nil)
		}

		content, err := fp.ReadResume(filename)
		if err != nil {
			return nil, err // Error already wrapped by the extractor
		}

		contents[i] = content
	}

	return contents, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	info, err := os.Stat(filename)
	if err == nil && info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Invalid output file: %s is a directory", filename), nil)
	}

	return nil
}
