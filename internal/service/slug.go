package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus a combining mark.
var slugReplacer = strings.NewReplacer(
	"ı", "i",
	"ß", "ss",
	"æ", "ae",
	"ø", "o",
	"đ", "d",
	"ł", "l",
)

// Slugify turns a title into a lowercase ASCII slug: accents are stripped, runs of
// anything other than letters and digits become a single "-", and leading and
// trailing dashes are trimmed. "Kapadokya & Efes Turu" becomes "kapadokya-efes-turu".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		stripped = strings.ToLower(title)
	}
	stripped = slugReplacer.Replace(stripped)

	var b strings.Builder
	dash := false
	for _, r := range stripped {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
