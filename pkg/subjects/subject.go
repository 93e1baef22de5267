// Package subjects models the locally cached lexical snapshot: radicals,
// kanji, and vocabulary entries with cross-references, as downloaded from
// the WaniKani v2 API.
package subjects

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the subject variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindRadical
	KindKanji
	KindVocabulary
)

func (k Kind) String() string {
	switch k {
	case KindRadical:
		return "radical"
	case KindKanji:
		return "kanji"
	case KindVocabulary:
		return "vocabulary"
	default:
		return "unknown"
	}
}

// Meaning is one English meaning of a subject. The first meaning in a
// subject's list is its canonical one.
type Meaning struct {
	Meaning string `json:"meaning"`
	Primary bool   `json:"primary"`
}

// Reading is one reading of a kanji subject.
type Reading struct {
	Reading string `json:"reading"`
	Type    string `json:"type"` // "onyomi" or "kunyomi"
	Primary bool   `json:"primary"`
}

// CharacterImage describes a downloadable glyph image for radicals that
// have no literal Unicode form.
type CharacterImage struct {
	URL         string        `json:"url"`
	ContentType string        `json:"content_type"`
	Metadata    ImageMetadata `json:"metadata"`
}

// ImageMetadata carries the style attributes used to pick an image.
type ImageMetadata struct {
	StyleName string `json:"style_name"`
}

// PronunciationAudio describes a downloadable audio asset of a
// vocabulary subject.
type PronunciationAudio struct {
	URL         string        `json:"url"`
	ContentType string        `json:"content_type"`
	Metadata    AudioMetadata `json:"metadata"`
}

// AudioMetadata carries the speaker attributes used to pick an audio clip.
type AudioMetadata struct {
	Gender string `json:"gender"`
}

// RadicalData holds the fields of a radical subject. Characters is empty
// when the radical has no literal glyph; CharacterImages is the fallback.
type RadicalData struct {
	Characters      string
	Meanings        []Meaning
	MeaningMnemonic string
	CharacterImages []CharacterImage
}

// KanjiData holds the fields of a kanji subject.
type KanjiData struct {
	Characters                string
	Meanings                  []Meaning
	Readings                  []Reading
	MeaningMnemonic           string
	MeaningHint               string
	ReadingMnemonic           string
	ReadingHint               string
	ComponentSubjectIDs       []int64
	VisuallySimilarSubjectIDs []int64
}

// VocabularyData holds the fields of a vocabulary subject.
type VocabularyData struct {
	Characters          string
	Meanings            []Meaning
	ComponentSubjectIDs []int64
	PronunciationAudios []PronunciationAudio
}

// Subject is one snapshot entry. Exactly one of Radical, Kanji, and
// Vocabulary is set, matching Kind.
type Subject struct {
	ID         int64
	Kind       Kind
	Radical    *RadicalData
	Kanji      *KanjiData
	Vocabulary *VocabularyData
}

// Characters returns the literal glyph(s) of the subject, or "" when the
// subject has none (image-only radicals).
func (s *Subject) Characters() string {
	switch s.Kind {
	case KindRadical:
		return s.Radical.Characters
	case KindKanji:
		return s.Kanji.Characters
	case KindVocabulary:
		return s.Vocabulary.Characters
	}
	return ""
}

// Meanings returns the subject's ordered meaning list.
func (s *Subject) Meanings() []Meaning {
	switch s.Kind {
	case KindRadical:
		return s.Radical.Meanings
	case KindKanji:
		return s.Kanji.Meanings
	case KindVocabulary:
		return s.Vocabulary.Meanings
	}
	return nil
}

// PrimaryMeaning returns the canonical English meaning: the first entry
// of the meaning list.
func (s *Subject) PrimaryMeaning() string {
	m := s.Meanings()
	if len(m) == 0 {
		return ""
	}
	return m[0].Meaning
}

// envelope matches the WaniKani subject record shape: the discriminator
// lives in "object", everything else under "data".
type envelope struct {
	ID     int64           `json:"id"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type radicalJSON struct {
	Characters      *string          `json:"characters"`
	Meanings        []Meaning        `json:"meanings"`
	MeaningMnemonic string           `json:"meaning_mnemonic"`
	CharacterImages []CharacterImage `json:"character_images"`
}

type kanjiJSON struct {
	Characters                string    `json:"characters"`
	Meanings                  []Meaning `json:"meanings"`
	Readings                  []Reading `json:"readings"`
	MeaningMnemonic           string    `json:"meaning_mnemonic"`
	MeaningHint               string    `json:"meaning_hint"`
	ReadingMnemonic           string    `json:"reading_mnemonic"`
	ReadingHint               string    `json:"reading_hint"`
	ComponentSubjectIDs       []int64   `json:"component_subject_ids"`
	VisuallySimilarSubjectIDs []int64   `json:"visually_similar_subject_ids"`
}

type vocabularyJSON struct {
	Characters          string               `json:"characters"`
	Meanings            []Meaning            `json:"meanings"`
	ComponentSubjectIDs []int64              `json:"component_subject_ids"`
	PronunciationAudios []PronunciationAudio `json:"pronunciation_audios"`
}

// UnmarshalJSON decodes a subject envelope into the variant selected by
// its "object" field. Kinds this tool does not synthesize cards for
// (e.g. kana_vocabulary) decode to KindUnknown and are skipped by the
// snapshot indexes.
func (s *Subject) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	s.ID = env.ID
	switch env.Object {
	case "radical":
		var d radicalJSON
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("subject %d: %w", env.ID, err)
		}
		s.Kind = KindRadical
		s.Radical = &RadicalData{
			Meanings:        d.Meanings,
			MeaningMnemonic: d.MeaningMnemonic,
			CharacterImages: d.CharacterImages,
		}
		if d.Characters != nil {
			s.Radical.Characters = *d.Characters
		}
	case "kanji":
		var d kanjiJSON
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("subject %d: %w", env.ID, err)
		}
		s.Kind = KindKanji
		s.Kanji = &KanjiData{
			Characters:                d.Characters,
			Meanings:                  d.Meanings,
			Readings:                  d.Readings,
			MeaningMnemonic:           d.MeaningMnemonic,
			MeaningHint:               d.MeaningHint,
			ReadingMnemonic:           d.ReadingMnemonic,
			ReadingHint:               d.ReadingHint,
			ComponentSubjectIDs:       d.ComponentSubjectIDs,
			VisuallySimilarSubjectIDs: d.VisuallySimilarSubjectIDs,
		}
	case "vocabulary":
		var d vocabularyJSON
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fmt.Errorf("subject %d: %w", env.ID, err)
		}
		s.Kind = KindVocabulary
		s.Vocabulary = &VocabularyData{
			Characters:          d.Characters,
			Meanings:            d.Meanings,
			ComponentSubjectIDs: d.ComponentSubjectIDs,
			PronunciationAudios: d.PronunciationAudios,
		}
	default:
		s.Kind = KindUnknown
	}
	return nil
}
