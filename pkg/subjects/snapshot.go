package subjects

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the complete, read-only collection of subjects for one run.
// Lookup maps are built once at construction; first occurrence wins when
// two subjects of the same kind share characters.
type Snapshot struct {
	subjects    []Subject
	byID        map[int64]*Subject
	kanjiByChar map[string]*Subject
	vocabByChar map[string]*Subject
}

// New builds a snapshot over the given subjects.
func New(list []Subject) *Snapshot {
	s := &Snapshot{
		subjects:    list,
		byID:        make(map[int64]*Subject, len(list)),
		kanjiByChar: make(map[string]*Subject),
		vocabByChar: make(map[string]*Subject),
	}
	for i := range s.subjects {
		sub := &s.subjects[i]
		s.byID[sub.ID] = sub
		switch sub.Kind {
		case KindKanji:
			if _, ok := s.kanjiByChar[sub.Kanji.Characters]; !ok {
				s.kanjiByChar[sub.Kanji.Characters] = sub
			}
		case KindVocabulary:
			if _, ok := s.vocabByChar[sub.Vocabulary.Characters]; !ok {
				s.vocabByChar[sub.Vocabulary.Characters] = sub
			}
		}
	}
	return s
}

// Load reads a snapshot file: a JSON array of subject envelopes.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var list []Subject
	if err := json.NewDecoder(f).Decode(&list); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return New(list), nil
}

// Len returns the number of subjects in the snapshot.
func (s *Snapshot) Len() int { return len(s.subjects) }

// ByID looks a subject up by its snapshot id.
func (s *Snapshot) ByID(id int64) (*Subject, bool) {
	sub, ok := s.byID[id]
	return sub, ok
}

// KanjiByCharacter returns the first kanji subject whose characters equal
// ch. A miss is legitimate: words may contain kanji the snapshot does not
// cover, and callers divert those into the furigana fallback path.
func (s *Snapshot) KanjiByCharacter(ch string) (*Subject, bool) {
	sub, ok := s.kanjiByChar[ch]
	return sub, ok
}

// VocabularyByCharacters returns the vocabulary subject whose characters
// equal word, if any. Used to locate pronunciation audio.
func (s *Snapshot) VocabularyByCharacters(word string) (*Subject, bool) {
	sub, ok := s.vocabByChar[word]
	return sub, ok
}

// Radicals maps a kanji's component ids to radical subjects. A component
// id with no snapshot entry is a snapshot-consistency violation: radicals
// are assumed always present when referenced by a kanji that resolved.
func (s *Snapshot) Radicals(k *Subject) ([]*Subject, error) {
	if k.Kind != KindKanji {
		return nil, fmt.Errorf("subjects: %s subject %d has no radicals", k.Kind, k.ID)
	}
	radicals := make([]*Subject, 0, len(k.Kanji.ComponentSubjectIDs))
	for _, id := range k.Kanji.ComponentSubjectIDs {
		r, ok := s.byID[id]
		if !ok {
			return nil, fmt.Errorf("subjects: kanji %d references missing radical %d", k.ID, id)
		}
		radicals = append(radicals, r)
	}
	return radicals, nil
}

// SimilarKanji maps a kanji's visually-similar ids to subjects. Unlike
// Radicals, a dangling id is tolerated and keeps its position as a nil
// entry; presentation layers skip those.
func (s *Snapshot) SimilarKanji(k *Subject) []*Subject {
	if k.Kind != KindKanji {
		return nil
	}
	similar := make([]*Subject, 0, len(k.Kanji.VisuallySimilarSubjectIDs))
	for _, id := range k.Kanji.VisuallySimilarSubjectIDs {
		sub, ok := s.byID[id]
		if !ok {
			similar = append(similar, nil)
			continue
		}
		similar = append(similar, sub)
	}
	return similar
}
