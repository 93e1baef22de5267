package subjects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Load("testdata/snapshot.json")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return snap
}

func TestLoadSnapshot(t *testing.T) {
	snap := loadTestSnapshot(t)
	if snap.Len() != 6 {
		t.Fatalf("expected 6 subjects, got %d", snap.Len())
	}

	r, ok := snap.ByID(2)
	if !ok {
		t.Fatal("radical 2 missing")
	}
	if r.Kind != KindRadical {
		t.Errorf("subject 2: expected radical, got %s", r.Kind)
	}
	if r.Characters() != "" {
		t.Errorf("radical 2 should have no literal glyph, got %q", r.Characters())
	}
	if len(r.Radical.CharacterImages) != 3 {
		t.Errorf("radical 2: expected 3 images, got %d", len(r.Radical.CharacterImages))
	}
	if r.PrimaryMeaning() != "Gun" {
		t.Errorf("radical 2: primary meaning %q, want Gun", r.PrimaryMeaning())
	}

	k, ok := snap.KanjiByCharacter("食")
	if !ok {
		t.Fatal("kanji 食 missing")
	}
	if k.ID != 10 || k.Kind != KindKanji {
		t.Errorf("unexpected subject for 食: id=%d kind=%s", k.ID, k.Kind)
	}
	if len(k.Kanji.Readings) != 4 {
		t.Errorf("kanji 食: expected 4 readings, got %d", len(k.Kanji.Readings))
	}

	v, ok := snap.VocabularyByCharacters("食べる")
	if !ok {
		t.Fatal("vocabulary 食べる missing")
	}
	if len(v.Vocabulary.PronunciationAudios) != 2 {
		t.Errorf("vocabulary 食べる: expected 2 audios, got %d", len(v.Vocabulary.PronunciationAudios))
	}
}

func TestKanjiByCharacterMiss(t *testing.T) {
	snap := loadTestSnapshot(t)
	if _, ok := snap.KanjiByCharacter("鰻"); ok {
		t.Error("expected miss for kanji not in snapshot")
	}
}

func TestRadicals(t *testing.T) {
	snap := loadTestSnapshot(t)
	k, _ := snap.KanjiByCharacter("食")
	radicals, err := snap.Radicals(k)
	if err != nil {
		t.Fatalf("radicals: %v", err)
	}
	if len(radicals) != 1 || radicals[0].ID != 1 {
		t.Fatalf("expected radical 1, got %v", radicals)
	}
	if radicals[0].Characters() != "人" {
		t.Errorf("expected 人, got %q", radicals[0].Characters())
	}
}

func TestRadicalsDanglingReference(t *testing.T) {
	snap := loadTestSnapshot(t)
	k, _ := snap.KanjiByCharacter("銃")
	if _, err := snap.Radicals(k); err == nil {
		t.Fatal("expected error for dangling radical reference")
	}
}

func TestSimilarKanjiKeepsPlaceholders(t *testing.T) {
	snap := loadTestSnapshot(t)
	k, _ := snap.KanjiByCharacter("食")
	similar := snap.SimilarKanji(k)
	if len(similar) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(similar))
	}
	if similar[0] == nil || similar[0].ID != 11 {
		t.Errorf("expected subject 11 at position 0, got %v", similar[0])
	}
	if similar[1] != nil {
		t.Errorf("expected nil placeholder for dangling id 999, got %v", similar[1])
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	var s Subject
	if err := json.Unmarshal([]byte(`{"id": 7, "object": "kana_vocabulary", "data": {}}`), &s); err != nil {
		t.Fatalf("unknown kinds should decode without error: %v", err)
	}
	if s.Kind != KindUnknown {
		t.Errorf("expected KindUnknown, got %s", s.Kind)
	}
}

func TestDownloaderPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"data": [{"id": 2, "object": "radical", "data": {"characters": "口", "meanings": [{"meaning": "Mouth", "primary": true}]}}], "pages": {"next_url": null}}`)
			return
		}
		fmt.Fprintf(w, `{"data": [{"id": 1, "object": "radical", "data": {"characters": "一", "meanings": [{"meaning": "Ground", "primary": true}]}}], "pages": {"next_url": %q}}`, srv.URL+"/subjects?page=2")
	}))
	defer srv.Close()

	d := NewDownloader("test-token")
	d.BaseURL = srv.URL

	dest := filepath.Join(t.TempDir(), "snapshot.json")
	n, err := d.DownloadToFile(context.Background(), dest)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 subjects, got %d", n)
	}

	// The written file must round-trip through the snapshot loader.
	snap, err := Load(dest)
	if err != nil {
		t.Fatalf("load downloaded snapshot: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("expected 2 subjects in snapshot, got %d", snap.Len())
	}
	if _, ok := snap.ByID(2); !ok {
		t.Error("subject from second page missing")
	}
}

func TestDownloaderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := NewDownloader("bad-token")
	d.BaseURL = srv.URL
	if _, err := d.Download(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse snapshot") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
