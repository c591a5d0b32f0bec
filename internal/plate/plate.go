// Package plate normalizes and formats vehicle license plates.
package plate

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
	indianFormat    = regexp.MustCompile(`^([A-Z]{2})(\d{1,2})([A-Z]{1,2})(\d{1,4})$`)
)

// Normalize reduces a plate to its canonical stored form: uppercase
// alphanumerics with everything else stripped. Reservations persist this
// form, and fine matching joins on it.
func Normalize(plate string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(plate), "")
}

// Valid reports whether a string normalizes to a well-formed plate.
func Valid(plate string) bool {
	return indianFormat.MatchString(Normalize(plate))
}

// Format renders a normalized plate for display, e.g. "TN72FB9999" becomes
// "TN 72 FB 9999". Plates that do not match the expected shape are returned
// unchanged.
func Format(plate string) string {
	normalized := Normalize(plate)
	m := indianFormat.FindStringSubmatch(normalized)
	if m == nil {
		return plate
	}
	return strings.Join(m[1:], " ")
}
