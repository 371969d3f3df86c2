package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// dataKeyRegex matches record field names usable as a value key.
var dataKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateDataKey validates the record field that holds chart values.
//
// Keys are plain identifiers (letters, digits, underscore, dot, dash) of at
// most 64 characters. An empty key is rejected; callers substitute the
// default before validating.
func ValidateDataKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidDataKey, "data key cannot be empty")
	}
	if len(key) > 64 {
		return New(ErrCodeInvalidDataKey, "data key too long (max 64 characters)")
	}
	if !dataKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidDataKey, "invalid data key: %q", key)
	}
	return nil
}

// datasetExtensions lists the file extensions accepted for dataset import.
var datasetExtensions = map[string]bool{
	".json": true,
	".csv":  true,
	".toml": true,
}

// ValidateDatasetFilename validates the name of an uploaded dataset file.
// It must be a plain basename with a .json, .csv or .toml extension.
func ValidateDatasetFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidDataset, "dataset filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidDataset, "dataset filename cannot contain path separators")
	}
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidDataset, "dataset filename cannot be a hidden file")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !datasetExtensions[ext] {
		return New(ErrCodeInvalidDataset, "unsupported dataset extension %q (want .json, .csv or .toml)", ext)
	}
	return nil
}

// ValidateChartID validates a saved chart identifier. Identifiers are UUIDs.
func ValidateChartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidChartID, "chart id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidChartID, err, "invalid chart id %q", id)
	}
	return nil
}

// ValidateName validates a human-facing name such as a chart title or
// document name.
//
// Validation rules:
//   - Maximum length of 200 characters
//   - No control characters
func ValidateName(name string) error {
	const maxNameLength = 200
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
