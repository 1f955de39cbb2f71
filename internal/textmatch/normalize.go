package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options control text normalization. The zero value keeps case folding on
// and diacritics intact; use DefaultOptions for the common form.
type Options struct {
	CaseSensitive    bool
	TrimWhitespace   bool
	RemoveDiacritics bool
}

// DefaultOptions lowercases and collapses whitespace but keeps diacritics.
// Diacritic removal is opt-in because it is lossy and ambiguous for short
// tokens.
func DefaultOptions() Options {
	return Options{TrimWhitespace: true}
}

// diacriticStripper decomposes to NFD, drops combining marks and recomposes.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// baseLetters maps letters that do not decompose into base + combining mark.
// Vietnamese đ is the main offender for trade data.
var baseLetters = strings.NewReplacer(
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
)

// Normalize prepares a value for comparison: collapses internal whitespace
// runs to a single space and trims the ends when requested, lowercases
// unless case-sensitive, and strips diacritics only when explicitly asked.
func Normalize(text string, opts Options) string {
	out := text
	if opts.TrimWhitespace {
		out = strings.Join(strings.Fields(out), " ")
	}
	if !opts.CaseSensitive {
		out = strings.ToLower(out)
	}
	if opts.RemoveDiacritics {
		out = baseLetters.Replace(out)
		if stripped, _, err := transform.String(diacriticStripper, out); err == nil {
			out = stripped
		}
	}
	return out
}

// normalizeFull is the comparison form used for synonym lookups: lowercased,
// whitespace-collapsed and diacritic-free, so "Hoa Kỳ" and "hoa ky" agree.
func normalizeFull(text string) string {
	return Normalize(text, Options{TrimWhitespace: true, RemoveDiacritics: true})
}
