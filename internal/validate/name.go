// internal/validate/name.go
package validate

import "unicode"

// Title reports whether a book title is usable. Any non-empty string is.
func Title(s string) bool {
	return s != ""
}

// Name reports whether a user name is usable. Any non-empty string is.
func Name(s string) bool {
	return s != ""
}

// Author reports whether s is a well-formed author name: letters, optionally
// separated by single spaces, hyphens or apostrophes, starting and ending
// with a letter.
func Author(s string) bool {
	if s == "" {
		return false
	}

	prevSeparator := true // a leading separator is rejected like a doubled one
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			prevSeparator = false
		case isSeparator(r):
			if prevSeparator {
				return false
			}
			prevSeparator = true
		default:
			return false
		}
	}

	return !prevSeparator
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '\''
}
