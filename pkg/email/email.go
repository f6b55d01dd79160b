package email

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	folder = cases.Fold()
	titler = cases.Title(language.Und)
)

// Normalize trims and case-folds an address so two spellings of the same
// mailbox compare equal. Empty input stays empty.
func Normalize(address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return ""
	}
	return folder.String(trimmed)
}

// Equal reports whether two addresses refer to the same mailbox after
// normalization. Two blank addresses are never equal.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// SplitName derives a first/last name pair from the local part of an
// address, used when a provider requires names a local record lacks.
func SplitName(address string) (string, string) {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "", ""
	}
	first := titler.String(parts[0])
	last := ""
	if len(parts) > 1 {
		last = titler.String(parts[len(parts)-1])
	}
	return first, last
}
