package infrastructure

import (
	"mime"
	"net/http"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reservedRunes cannot appear in a file name on at least one common OS
const reservedRunes = `/\:*?"<>|`

// HeaderFilename returns the filename announced in a Content-Disposition
// header, or "" when there is none
func HeaderFilename(h http.Header) string {
	contentDisposition := h.Get("Content-Disposition")
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// SanitizeFilename reduces a server-supplied name to a safe base name.
// It returns "" when nothing usable is left.
func SanitizeFilename(name string) string {
	// Drop any directory part, whichever separator the server used
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	t := transform.Chain(
		norm.NFC,
		runes.Remove(runes.In(unicode.Cc)),
		runes.Map(func(r rune) rune {
			if strings.ContainsRune(reservedRunes, r) {
				return '_'
			}
			return r
		}),
	)
	clean, _, err := transform.String(t, name)
	if err != nil {
		return ""
	}

	clean = strings.TrimSpace(clean)
	if strings.Trim(clean, ".") == "" {
		return ""
	}
	return clean
}
