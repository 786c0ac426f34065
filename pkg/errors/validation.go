package errors

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateCopies checks that a request asks for at least one copy.
func ValidateCopies(copies int) error {
	if copies < 1 {
		return New(ErrCodeInvalidRequest, "copies must be at least 1, got %d", copies)
	}
	return nil
}

// ValidatePositive checks that a physical dimension is a finite positive number.
// The name is used in the error message (e.g., "roll width").
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be a positive number, got %v", name, v)
	}
	return nil
}

// categoryLabelRegex matches catalog tags such as "back" or "front-5".
var categoryLabelRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateCategoryLabel validates a catalog tag. Tags are lowercase so that
// lookups from user input can be case-insensitive.
func ValidateCategoryLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidCategory, "category label cannot be empty")
	}
	if len(label) > 64 {
		return New(ErrCodeInvalidCategory, "category label too long (max 64 characters)")
	}
	if !categoryLabelRegex.MatchString(label) {
		return New(ErrCodeInvalidCategory, "invalid category label: %q", label)
	}
	return nil
}

// ValidateAssetName validates a design file name for safety.
// It ensures the name is a simple basename without path components, since
// names end up inside archive manifests and HTTP responses.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "asset name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "asset name too long (max 256 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "asset name cannot contain path separators")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "asset name contains invalid control characters")
		}
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "asset name cannot be %q", name)
	}
	return nil
}

// ValidatePath validates a relative object path (archive entry, storage key prefix).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidatePublishURL validates an object storage target of the form
// s3://bucket[/prefix].
func ValidatePublishURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "publish URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid publish URL")
	}
	if u.Scheme != "s3" {
		return New(ErrCodeInvalidInput, "publish URL must use the s3 scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "publish URL must name a bucket")
	}
	if prefix := strings.Trim(u.Path, "/"); prefix != "" {
		return ValidatePath(prefix)
	}
	return nil
}
