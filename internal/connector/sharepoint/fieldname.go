package sharepoint

import (
	"fmt"
	"strings"
)

// specialChars lists, in substitution order, the characters SharePoint
// escapes when deriving an internal field name from a display name.
var specialChars = []rune{
	'~', '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '+', '-', '=',
	'{', '}', ':', '"', '<', '>', '?', ',', '.', '/', '`', ' ',
}

var fieldNameEncoder = newFieldNameEncoder()

func newFieldNameEncoder() *strings.Replacer {
	pairs := make([]string, 0, 2*len(specialChars))
	for _, c := range specialChars {
		pairs = append(pairs, string(c), EscapeToken(c))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeToken returns the _xHHHH_ token for c.
func EscapeToken(c rune) string {
	return fmt.Sprintf("_x%04x_", c)
}

// EncodeFieldName turns a property name into the internal key records are
// stored under. Names without special characters are returned unchanged.
// No token character is itself special, so one pass is stable.
func EncodeFieldName(name string) string {
	return fieldNameEncoder.Replace(name)
}

// NormalizeDiscoveredName strips one trailing "_0", the suffix SharePoint
// appends to names that collide with a reserved one.
//
// It is not the inverse of EncodeFieldName.
func NormalizeDiscoveredName(raw string) string {
	return strings.TrimSuffix(raw, "_0")
}
