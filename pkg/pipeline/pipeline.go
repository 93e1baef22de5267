// Package pipeline orchestrates a full sync run for one vocabulary
// word: resolve its kanji and radicals against the snapshot, enrich
// from the dictionary, create whatever notes the store is missing in
// dependency order, and publish the vocabulary note last.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"tenten/pkg/anki"
	"tenten/pkg/cards"
	"tenten/pkg/db"
	"tenten/pkg/jisho"
	"tenten/pkg/jptext"
	"tenten/pkg/subjects"
)

// NoteStore is the subset of the flashcard store the controller drives.
type NoteStore interface {
	FindNotes(ctx context.Context, query string) ([]int64, error)
	AddNote(ctx context.Context, note anki.Note) (anki.AddResult, error)
}

// Dictionary is the lexical enrichment service.
type Dictionary interface {
	LookupWord(ctx context.Context, word string) (*jisho.WordSense, error)
	LookupKanji(ctx context.Context, ch string) (*jisho.KanjiSense, error)
}

// Pipeline wires the collaborators for sync runs. Every external call
// is sequential and blocking; a failure anywhere aborts the run. That
// is safe because every write is existence-checked or duplicate
// suppressed, so an aborted run leaves a re-runnable intermediate
// state, never a corrupt one.
type Pipeline struct {
	Snapshot   *subjects.Snapshot
	Dictionary Dictionary
	Store      NoteStore
	Synth      *cards.Synthesizer

	// Journal, when non-nil, receives one sync_log row per completed run.
	Journal *sql.DB
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
}

// Result summarizes one completed run.
type Result struct {
	Word            string
	VocabStatus     anki.Status
	CreatedKanji    []string
	ExistingKanji   []string
	CreatedRadicals []string
	// Fallback holds the word's kanji absent from the snapshot; they get
	// furigana on the vocabulary card instead of cards of their own.
	Fallback []string
}

type resolvedKanji struct {
	char    string
	subject *subjects.Subject // nil when the snapshot does not know the kanji
}

// Run executes the full pipeline for word.
func (p *Pipeline) Run(ctx context.Context, word string) (*Result, error) {
	// RESOLVE: find the word's distinct kanji and their snapshot subjects.
	var entries []resolvedKanji
	seen := make(map[string]bool)
	for _, ch := range jptext.ExtractKanji(word) {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		subject, ok := p.Snapshot.KanjiByCharacter(ch)
		if !ok {
			subject = nil
		}
		entries = append(entries, resolvedKanji{char: ch, subject: subject})
	}

	// ENRICH: word sense first (the exact-match gate runs before any
	// store write), then supplementary kanji data.
	ws, err := p.Dictionary.LookupWord(ctx, word)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.subject == nil {
			continue
		}
		ks, err := p.Dictionary.LookupKanji(ctx, e.char)
		if err != nil {
			return nil, fmt.Errorf("enrich kanji %s: %w", e.char, err)
		}
		if len(ks.Meanings) > 0 {
			p.logf("Kanji %s: %s", e.char, strings.Join(ks.Meanings, ", "))
		}
	}

	// SATISFY_DEPENDENCIES: ensure each resolved kanji and its radicals
	// exist before the vocabulary note references them. Unresolved kanji
	// join the furigana fallback set instead.
	res := &Result{Word: word}
	var resolved []*subjects.Subject
	for _, e := range entries {
		if e.subject == nil {
			res.Fallback = append(res.Fallback, e.char)
			p.logf("Kanji %s not in snapshot, deferring to furigana", e.char)
			continue
		}
		resolved = append(resolved, e.subject)

		ids, err := p.Store.FindNotes(ctx, fmt.Sprintf("deck:%s front:%q", p.Synth.KanjiDeck.Name, e.char))
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			res.ExistingKanji = append(res.ExistingKanji, e.char)
			p.logf("Kanji %s already in deck", e.char)
			continue
		}

		radicals, err := p.Snapshot.Radicals(e.subject)
		if err != nil {
			return nil, err
		}
		for _, rad := range radicals {
			created, err := p.ensureRadical(ctx, rad)
			if err != nil {
				return nil, err
			}
			if created {
				res.CreatedRadicals = append(res.CreatedRadicals, rad.PrimaryMeaning())
			}
		}

		note, err := p.Synth.KanjiNote(ctx, e.subject, radicals)
		if err != nil {
			return nil, err
		}
		add, err := p.Store.AddNote(ctx, note)
		if err != nil {
			return nil, err
		}
		if add.Status == anki.StatusCreated {
			res.CreatedKanji = append(res.CreatedKanji, e.char)
			p.logf("Kanji %s added to deck", e.char)
		} else {
			res.ExistingKanji = append(res.ExistingKanji, e.char)
			p.logf("Kanji %s already in deck", e.char)
		}
	}

	// PUBLISH_VOCAB: the fallback set is complete only now, so the
	// vocabulary note is always last.
	vocabText, err := p.Synth.AnnotateVocab(word, ws, res.Fallback)
	if err != nil {
		return nil, err
	}
	vocabSubject, _ := p.Snapshot.VocabularyByCharacters(word)
	soundRef, err := p.Synth.Assets.VocabAudio(ctx, p.Synth.VocabDeck.Name, vocabText, vocabSubject)
	if err != nil {
		return nil, err
	}
	note, err := p.Synth.VocabNote(word, vocabText, ws, resolved, soundRef)
	if err != nil {
		return nil, err
	}
	add, err := p.Store.AddNote(ctx, note)
	if err != nil {
		return nil, err
	}
	res.VocabStatus = add.Status
	if add.Status == anki.StatusCreated {
		p.logf("Created vocab %s", word)
	} else {
		p.logf("Vocab %s already exists", word)
	}

	// DONE.
	p.journal(res)
	return res, nil
}

// ensureRadical runs the check-then-create step for one radical and
// reports whether a note was created.
func (p *Pipeline) ensureRadical(ctx context.Context, rad *subjects.Subject) (bool, error) {
	// Image-only radicals have no queryable glyph text, so existence is
	// keyed on the canonical meaning instead. The term is quoted: meanings
	// like "Good Luck" would otherwise split into separate search terms.
	term := rad.Radical.Characters
	if term == "" {
		term = rad.PrimaryMeaning()
	}
	ids, err := p.Store.FindNotes(ctx, fmt.Sprintf("deck:%s front:%q", p.Synth.RadicalDeck.Name, term))
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return false, nil
	}

	note, err := p.Synth.RadicalNote(ctx, rad)
	if err != nil {
		return false, err
	}
	add, err := p.Store.AddNote(ctx, note)
	if err != nil {
		return false, err
	}
	if add.Status == anki.StatusCreated {
		p.logf("Radical %s added to deck", term)
		return true, nil
	}
	return false, nil
}

func (p *Pipeline) journal(res *Result) {
	if p.Journal == nil {
		return
	}
	_, err := db.RecordSync(p.Journal, db.SyncRecord{
		Word:            res.Word,
		VocabStatus:     res.VocabStatus.String(),
		KanjiCreated:    len(res.CreatedKanji),
		RadicalsCreated: len(res.CreatedRadicals),
		Fallback:        strings.Join(res.Fallback, ""),
	})
	if err != nil {
		p.logf("Warning: failed to journal sync of %s: %v", res.Word, err)
	}
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logger == nil {
		return
	}
	p.Logger.Printf(format, args...)
}
