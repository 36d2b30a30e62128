package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// arabicMark reports Arabic combining marks: tashkeel, Quranic annotation
// signs and the superscript alef. Hamza above and below (U+0654, U+0655) are
// included so that decomposed alef-with-hamza folds to a bare alef.
func arabicMark(r rune) bool {
	if !unicode.Is(unicode.Mn, r) {
		return false
	}
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670:
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	}
	return false
}

func foldArabicLetter(r rune) rune {
	switch r {
	case 'ی', 'ى': // Farsi yeh, alef maksura
		return 'ي'
	case 'ٱ': // alef wasla
		return 'ا'
	}
	return r
}

// NormalizeArabic strips diacritics and tatweel and folds alef, hamza and yeh
// variants so that queries match regardless of vocalisation. Non-Arabic text
// passes through unchanged.
func NormalizeArabic(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(arabicMark)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		runes.Map(foldArabicLetter),
		norm.NFC,
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text
	}
	return out
}
