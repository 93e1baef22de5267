package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Anki.VocabDeck != "TenTen::Vocabs" {
		t.Errorf("vocab deck default = %q", cfg.Anki.VocabDeck)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenten.toml")
	content := `
[anki]
address = "http://localhost:9999"

[paths]
snapshot = "/data/subjects.json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Anki.Address != "http://localhost:9999" {
		t.Errorf("address = %q", cfg.Anki.Address)
	}
	if cfg.Paths.Snapshot != "/data/subjects.json" {
		t.Errorf("snapshot = %q", cfg.Paths.Snapshot)
	}
	// Untouched keys keep their defaults.
	if cfg.Anki.KanjiDeck != "TenTen::Kanjis" {
		t.Errorf("kanji deck = %q", cfg.Anki.KanjiDeck)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenten.toml")
	if err := os.WriteFile(path, []byte("[anki\naddress="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSampleMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal([]byte(Sample()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("sample config diverges from defaults:\n got %+v\nwant %+v", cfg, Default())
	}
}
