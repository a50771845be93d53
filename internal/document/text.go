package document

import (
	"fmt"
	"os"

	"resumatch/internal/errors"
)

// TextExtractor reads plain-text resumes as-is
type TextExtractor struct{}

func (TextExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	return string(data), nil
}
