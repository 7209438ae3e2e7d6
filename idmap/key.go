package idmap

import "strings"

// Keys in the store are namespace qualified so the same store can map
// production numbers and standard numbers side by side.

// PPNKey returns the store key for a production number. The PPN is used raw,
// including its check digit, only surrounding whitespace is trimmed.
func PPNKey(ppn string) string {
	ppn = strings.TrimSpace(ppn)
	if ppn == "" {
		return ""
	}
	return "ppn:" + ppn
}

// ISBNKey returns the store key for an ISBN, normalized.
func ISBNKey(isbn string) string {
	n := NormalizeNumber(isbn)
	if n == "" {
		return ""
	}
	return "isbn:" + n
}

// ISSNKey returns the store key for an ISSN, normalized.
func ISSNKey(issn string) string {
	n := NormalizeNumber(issn)
	if n == "" {
		return ""
	}
	return "issn:" + n
}

// NormalizeNumber canonicalizes an ISBN or ISSN for use as a store key:
// digits and a check digit X (uppercased) are kept, hyphens, spaces and any
// trailing qualifier are dropped. The raw form stays available on the record
// itself, the store only ever sees the normalized form.
func NormalizeNumber(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			sb.WriteRune(c)
		case c == 'x' || c == 'X':
			sb.WriteRune('X')
		case c == '-' || c == ' ':
			// separators
		default:
			// first non-number character ends the number, e.g. "3-11-017932-1 Gewebe"
			return sb.String()
		}
	}
	return sb.String()
}
