// Package ingest extracts candidate vocabulary words from Japanese
// article text. Tokens come from the kagome morphological analyzer with
// the IPA dictionary; candidates are the kanji-bearing dictionary forms
// of content words, deduplicated in appearance order, ready to feed the
// sync pipeline one by one.
package ingest

import (
	"regexp"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"tenten/pkg/jptext"
)

// Token is a single analyzed unit of text.
type Token struct {
	Surface  string // the text as it appears (e.g. "行っ")
	BaseForm string // the dictionary form (e.g. "行く")
	Reading  string // katakana pronunciation (e.g. "イッ")
	// Features holds the raw IPA feature row. Index 0 is the primary part
	// of speech, index 1 the first sub-classification.
	Features []string
}

// PrimaryPOS returns the token's primary part-of-speech label.
func (t Token) PrimaryPOS() string {
	if len(t.Features) > 0 {
		return t.Features[0]
	}
	return ""
}

func (t Token) subPOS() string {
	if len(t.Features) > 1 {
		return t.Features[1]
	}
	return ""
}

// Analyzer segments text into tokens.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a tokenizer instance. The IPA dictionary is
// embedded, so this only fails on tokenizer misconfiguration.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
func (a *Analyzer) Analyze(text string) []Token {
	// IPA feature row layout:
	// 0: part of speech, 1-3: sub-POS, 4: conjugation type,
	// 5: conjugation form, 6: base form, 7: reading, 8: pronunciation.
	var result []Token
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		result = append(result, Token{
			Surface:  token.Surface,
			BaseForm: base,
			Reading:  reading,
			Features: features,
		})
	}
	return result
}

// candidatePOS are the content-word classes worth turning into cards.
var candidatePOS = map[string]bool{
	"名詞":  true,
	"動詞":  true,
	"形容詞": true,
}

// skippedSubPOS filters noise inside the candidate classes: numbers,
// bound nouns, and suffixes make poor standalone cards.
var skippedSubPOS = map[string]bool{
	"数":   true,
	"非自立": true,
	"接尾":  true,
}

// CandidateWords returns the kanji-bearing dictionary forms of the
// content words in text, deduplicated, in first-appearance order.
func (a *Analyzer) CandidateWords(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, tok := range a.Analyze(text) {
		if !candidatePOS[tok.PrimaryPOS()] || skippedSubPOS[tok.subPOS()] {
			continue
		}
		if !jptext.ContainsKanji(tok.BaseForm) {
			continue
		}
		if seen[tok.BaseForm] {
			continue
		}
		seen[tok.BaseForm] = true
		words = append(words, tok.BaseForm)
	}
	return words
}

var (
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML content. Readability extracts all text
// including furigana, which otherwise duplicates readings into the body
// (e.g. "漢字" becomes "漢字かんじ"). Operates on bytes; safe for
// Shift_JIS as well since the tag characters are ASCII and < is never a
// trailing byte.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	return reRP.ReplaceAll(cleaned, []byte{})
}
