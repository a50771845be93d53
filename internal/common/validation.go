package common

import (
	"fmt"
	"slices"
)

// formatAliases maps accepted spellings onto registry format names
var formatAliases = map[string]string{
	"table": "text",
	"md":    "markdown",
}

// NormalizeFormat resolves a format alias; unknown names pass through unchanged
func NormalizeFormat(format string) string {
	if canonical, ok := formatAliases[format]; ok {
		return canonical
	}
	return format
}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, NormalizeFormat(format)) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
