package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches 3- or 6-digit hex colors with a leading hash.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a node or connection color value.
// Empty strings are allowed (the renderer falls back to its default);
// anything else must be a hex color like #fff or #1a2b3c.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid color: %q (expected #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateName validates a user-facing name (chart display name, preset name).
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 120 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 120 {
		return New(ErrCodeInvalidInput, "name too long (max 120 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidatePhotoRef validates a person photo reference.
// A photo reference is either a data URI or an http(s) URL; anything else
// cannot be resolved by the asset fetcher. Empty references are allowed
// (person renders without a photo).
func ValidatePhotoRef(ref string) error {
	if ref == "" {
		return nil
	}

	const maxRefLength = 8 << 20 // data URIs carry whole images
	if len(ref) > maxRefLength {
		return New(ErrCodeInvalidPhotoRef, "photo reference too long")
	}

	if strings.HasPrefix(ref, "data:") {
		return nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return nil
	}

	return New(ErrCodeInvalidPhotoRef, "photo reference must be a data URI or http(s) URL")
}

// ValidateChartPath validates a chart file path supplied on the command line.
// It prevents null bytes and other control characters from reaching the
// filesystem layer; path traversal is fine here (users may point anywhere).
func ValidateChartPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
