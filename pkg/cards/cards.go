// Package cards synthesizes the field sets of radical, kanji, and
// vocabulary notes from snapshot subjects and dictionary sense data.
package cards

import (
	"context"
	"fmt"
	"strings"

	"tenten/pkg/anki"
	"tenten/pkg/jisho"
	"tenten/pkg/jptext"
	"tenten/pkg/subjects"
)

// Deck names a target deck and the note model used in it.
type Deck struct {
	Name  string
	Model string
}

// Synthesizer builds notes for the three entity kinds.
type Synthesizer struct {
	Snapshot *subjects.Snapshot
	Assets   *AssetResolver

	VocabDeck   Deck
	KanjiDeck   Deck
	RadicalDeck Deck
}

// RadicalNote builds the note for a radical subject.
func (s *Synthesizer) RadicalNote(ctx context.Context, rad *subjects.Subject) (anki.Note, error) {
	glyph, err := s.Assets.RadicalGlyph(ctx, rad)
	if err != nil {
		return anki.Note{}, err
	}
	fields := map[string]string{
		"radical":          glyph,
		"name":             joinMeanings(rad.Meanings()),
		"meaning_mnemonic": rad.Radical.MeaningMnemonic,
	}
	return anki.NewNote(s.RadicalDeck.Name, s.RadicalDeck.Model, fields), nil
}

// KanjiNote builds the note for a kanji subject. The radicals slice must
// be the kanji's resolved components, in component order.
func (s *Synthesizer) KanjiNote(ctx context.Context, k *subjects.Subject, radicals []*subjects.Subject) (anki.Note, error) {
	if k.Kind != subjects.KindKanji {
		return anki.Note{}, fmt.Errorf("cards: subject %d is %s, not a kanji", k.ID, k.Kind)
	}

	glyphs := make([]string, 0, len(radicals))
	names := make([]string, 0, len(radicals))
	for _, rad := range radicals {
		glyph, err := s.Assets.RadicalGlyph(ctx, rad)
		if err != nil {
			return anki.Note{}, err
		}
		glyphs = append(glyphs, glyph)
		names = append(names, rad.PrimaryMeaning())
	}

	// Dangling similar-kanji references stay in the resolver output as
	// nil placeholders; they are skipped here, not rendered blank.
	var similarChars, similarNames []string
	for _, sim := range s.Snapshot.SimilarKanji(k) {
		if sim == nil {
			continue
		}
		similarChars = append(similarChars, sim.Characters())
		similarNames = append(similarNames, sim.PrimaryMeaning())
	}

	fields := map[string]string{
		"kanji":               k.Kanji.Characters,
		"name":                joinMeanings(k.Kanji.Meanings),
		"readings_on":         formatReadings(k.Kanji.Readings, "onyomi"),
		"readings_kun":        formatReadings(k.Kanji.Readings, "kunyomi"),
		"meaning_mnemonic":    k.Kanji.MeaningMnemonic,
		"meaning_hint":        k.Kanji.MeaningHint,
		"reading_mnemonic":    k.Kanji.ReadingMnemonic,
		"reading_hint":        k.Kanji.ReadingHint,
		"radicals":            strings.Join(glyphs, " - "),
		"radicals_names":      strings.Join(names, " - "),
		"similar_kanji":       strings.Join(similarChars, ", "),
		"similar_kanji_names": strings.Join(similarNames, ", "),
	}
	return anki.NewNote(s.KanjiDeck.Name, s.KanjiDeck.Model, fields), nil
}

// AnnotateVocab returns the vocabulary text to print on the card. With
// an empty fallback set it is the word itself. With exactly one fallback
// kanji the dictionary reading is spliced in as furigana after that
// kanji. More than one fallback kanji is an unsupported configuration.
func (s *Synthesizer) AnnotateVocab(word string, ws *jisho.WordSense, fallback []string) (string, error) {
	switch len(fallback) {
	case 0:
		return word, nil
	case 1:
		if len(ws.Japanese) == 0 {
			return "", fmt.Errorf("cards: no reading available to annotate %q", word)
		}
		return jptext.SpliceFurigana(word, ws.Japanese[0].Reading, fallback[0])
	default:
		return "", fmt.Errorf("cards: %d unresolved kanji in %q, furigana supports exactly one", len(fallback), word)
	}
}

// VocabNote builds the vocabulary note. vocabText is the (possibly
// furigana-annotated) display text from AnnotateVocab; resolved holds
// the word's kanji subjects found in the snapshot; soundRef is the audio
// reference from the asset resolver, or "".
func (s *Synthesizer) VocabNote(word, vocabText string, ws *jisho.WordSense, resolved []*subjects.Subject, soundRef string) (anki.Note, error) {
	if len(ws.Senses) == 0 {
		return anki.Note{}, fmt.Errorf("cards: dictionary entry for %q has no senses", word)
	}

	// The kanji-grouped fields only appear when the snapshot recognized
	// at least one of the word's kanji.
	var grouped, groupedNames string
	if len(resolved) > 0 {
		grouped = jptext.SeparateCharacterTypeGroups(word)
		groupedNames = grouped
		for _, k := range resolved {
			groupedNames = strings.ReplaceAll(groupedNames, k.Characters(), k.PrimaryMeaning())
		}
	}

	fields := map[string]string{
		"meanings":     strings.Join(ws.Senses[0].EnglishDefinitions, ", "),
		"vocab":        vocabText,
		"readings":     strings.Join(uniqueReadings(ws.Japanese), ", "),
		"kanjis":       grouped,
		"kanjis_names": groupedNames,
		"type":         strings.Join(ws.Senses[0].PartsOfSpeech, ", "),
		"sound":        soundRef,
	}
	return anki.NewNote(s.VocabDeck.Name, s.VocabDeck.Model, fields), nil
}

// joinMeanings renders every meaning, comma separated.
func joinMeanings(meanings []subjects.Meaning) string {
	parts := make([]string, 0, len(meanings))
	for _, m := range meanings {
		parts = append(parts, m.Meaning)
	}
	return strings.Join(parts, ", ")
}

// formatReadings renders the readings of one type, underlining the
// primary ones.
func formatReadings(readings []subjects.Reading, typ string) string {
	var parts []string
	for _, r := range readings {
		if r.Type != typ {
			continue
		}
		if r.Primary {
			parts = append(parts, "<u>"+r.Reading+"</u>")
		} else {
			parts = append(parts, r.Reading)
		}
	}
	return strings.Join(parts, ", ")
}

// uniqueReadings deduplicates the japanese-form readings, keeping first
// appearance order.
func uniqueReadings(forms []jisho.JapaneseForm) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range forms {
		if f.Reading == "" || seen[f.Reading] {
			continue
		}
		seen[f.Reading] = true
		out = append(out, f.Reading)
	}
	return out
}
