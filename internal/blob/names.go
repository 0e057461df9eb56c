package blob

import (
	"regexp"
	"strings"
)

// MaxNameLength is the storage backend's blob name limit.
const MaxNameLength = 1024

var (
	illegalNameChars = regexp.MustCompile(`[\\/?#%]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeName converts free-text input into a storage-safe blob name:
// illegal characters and whitespace runs become underscores, leading and
// trailing dots and spaces are stripped, and the result is capped at
// MaxNameLength. When addExtension is true, ".txt" is appended and four
// characters are reserved for it. An input that sanitizes to nothing becomes
// "unnamed". Only an empty input is rejected.
func SanitizeName(name string, addExtension bool) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	safe := illegalNameChars.ReplaceAllString(name, "_")
	safe = whitespaceRuns.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, " .")

	if safe == "" {
		safe = "unnamed"
	}

	if addExtension {
		safe = truncateRunes(safe, MaxNameLength-4)
		return safe + ".txt", nil
	}
	return truncateRunes(safe, MaxNameLength), nil
}

// ValidateName reports whether name is already safe to use as-is: non-empty,
// within the length limit, free of illegal characters, and without leading or
// trailing dots and spaces.
func ValidateName(name string) bool {
	if name == "" || len([]rune(name)) > MaxNameLength {
		return false
	}
	if illegalNameChars.MatchString(name) {
		return false
	}
	return name == strings.Trim(name, " .")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
