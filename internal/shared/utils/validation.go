package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Size limits (in bytes)
const (
	MaxRequestSize = 256 * 1024 // layout mutations and drops with a scene
	MaxMessageSize = 64 * 1024  // one bridge push message
)

// String length limits
const (
	MaxIDLength         = 128
	MaxPlayerLength     = 96
	MaxFolderNameLength = 32
)

var (
	// SafeIDPattern allows alphanumeric, hyphens and underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// PlayerPattern also allows the colon used by license-style identifiers
	PlayerPattern = regexp.MustCompile(`^[a-zA-Z0-9:_-]+$`)

	strict = bluemonday.StrictPolicy()
)

// SizeValidator rejects payloads over a byte limit
type SizeValidator struct {
	maxSize int
}

// NewSizeValidator creates a validator with the specified max size
func NewSizeValidator(maxSize int) *SizeValidator {
	return &SizeValidator{maxSize: maxSize}
}

// ValidateSize checks if the data size is within limits
func (v *SizeValidator) ValidateSize(data []byte) error {
	if len(data) > v.maxSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", len(data), v.maxSize)
	}
	return nil
}

// Max returns the byte limit
func (v *SizeValidator) Max() int {
	return v.maxSize
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates an app or folder id
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidatePlayer validates a player identifier
func ValidatePlayer(player string) error {
	if err := ValidateString(player, "player", 1, MaxPlayerLength, true); err != nil {
		return err
	}
	if !PlayerPattern.MatchString(player) {
		return fmt.Errorf("player contains invalid characters")
	}
	return nil
}

// SanitizeFolderName strips markup and control characters from a user supplied
// folder name and truncates it. The result may be empty.
func SanitizeFolderName(name string) string {
	clean := html.UnescapeString(strict.Sanitize(name))
	clean = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, clean)
	clean = strings.Join(strings.Fields(clean), " ")

	if utf8.RuneCountInString(clean) > MaxFolderNameLength {
		clean = string([]rune(clean)[:MaxFolderNameLength])
		clean = strings.TrimSpace(clean)
	}
	return clean
}
