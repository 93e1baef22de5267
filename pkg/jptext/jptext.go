// Package jptext provides character-level classification and text
// transforms for Japanese study material: kanji detection, grouping of
// kanji/kana runs, katakana normalization, and furigana splicing.
package jptext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PartialMarker marks partial dictionary entries (e.g. 〜する). Lookups
// containing it are exempt from the exact-match requirement.
const PartialMarker = '〜'

// GroupSeparator is inserted between kanji and kana runs by
// SeparateCharacterTypeGroups.
const GroupSeparator = " - "

// IsKanji reports whether r lies in the CJK Unified Ideographs block
// (U+4E00 through U+9FFF inclusive).
func IsKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// IsKanjiChar classifies a single-character string. Anything other than
// exactly one character violates the input contract.
func IsKanjiChar(s string) (bool, error) {
	if utf8.RuneCountInString(s) != 1 {
		return false, fmt.Errorf("jptext: expected exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return IsKanji(r), nil
}

// ContainsKanji reports whether s contains at least one kanji character.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// HasPartialMarker reports whether s contains the partial-entry marker.
func HasPartialMarker(s string) bool {
	return strings.ContainsRune(s, PartialMarker)
}

// ExtractKanji returns every kanji character of word in order of
// appearance. Duplicates are kept; callers deduplicate where identity
// matters.
func ExtractKanji(word string) []string {
	var kanji []string
	for _, r := range word {
		if IsKanji(r) {
			kanji = append(kanji, string(r))
		}
	}
	return kanji
}

// SeparateCharacterTypeGroups inserts GroupSeparator at transitions
// between kanji and non-kanji characters, scanning left to right and
// tracking whether the previous character was kanji. A separator is
// written before the current character whenever the accumulator is
// non-empty and either the current or the previous character is kanji,
// so consecutive kanji are separated too: 食い止める → 食 - い - 止 - める.
func SeparateCharacterTypeGroups(s string) string {
	var b strings.Builder
	wasKanji := false
	for _, r := range s {
		if b.Len() > 0 && (IsKanji(r) || wasKanji) {
			b.WriteString(GroupSeparator)
		}
		b.WriteRune(r)
		wasKanji = IsKanji(r)
	}
	return b.String()
}

// ToHiragana converts katakana characters to their hiragana equivalents.
// Other characters pass through unchanged.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// SpliceFurigana annotates the single kanji character target inside
// surface with the portion of reading that belongs to it, in bracket
// notation: 食べる + たべる + 食 → 食[た]べる.
//
// The residual reading is derived by removing the contiguous non-kanji
// portions of the surface from the reading, so the surface must contain
// no kanji other than target. Reading comparison is done in hiragana.
func SpliceFurigana(surface, reading, target string) (string, error) {
	idx := strings.Index(surface, target)
	if idx < 0 {
		return "", fmt.Errorf("jptext: %q does not contain %q", surface, target)
	}
	pre := surface[:idx]
	post := surface[idx+len(target):]
	if ContainsKanji(pre) || ContainsKanji(post) {
		return "", fmt.Errorf("jptext: %q contains kanji besides %q, cannot isolate its reading", surface, target)
	}

	hira := ToHiragana(reading)
	preHira := ToHiragana(pre)
	postHira := ToHiragana(post)
	if !strings.HasPrefix(hira, preHira) || !strings.HasSuffix(hira, postHira) {
		return "", fmt.Errorf("jptext: reading %q does not bracket surface %q", reading, surface)
	}
	// The prefix and suffix may also overlap inside a too-short reading.
	if len(preHira)+len(postHira) > len(hira) {
		return "", fmt.Errorf("jptext: reading %q does not bracket surface %q", reading, surface)
	}
	residual := hira[len(preHira) : len(hira)-len(postHira)]
	if residual == "" {
		return "", fmt.Errorf("jptext: no residual reading for %q in %q", target, surface)
	}
	return pre + target + "[" + residual + "]" + post, nil
}
