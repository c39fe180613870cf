// internal/validate/isbn.go
package validate

const (
	isbnLength   = 13
	userIDLength = 12
)

// ISBN reports whether s is a 13-digit ISBN whose last digit matches the
// ISBN-13 checksum. The value is taken as-is: hyphens and spaces are not
// stripped.
func ISBN(s string) bool {
	if len(s) != isbnLength || !allDigits(s) {
		return false
	}

	return CheckDigit(s[:isbnLength-1]) == s[isbnLength-1]
}

// CheckDigit computes the ISBN-13 check digit for the first twelve digits of
// an ISBN. The caller guarantees twelve ASCII digits.
func CheckDigit(first12 string) byte {
	sum := 0
	for i := 0; i < isbnLength-1; i++ {
		d := int(first12[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}

	return byte('0' + (10-sum%10)%10)
}

// UserID reports whether s is exactly twelve ASCII digits.
func UserID(s string) bool {
	return len(s) == userIDLength && allDigits(s)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
