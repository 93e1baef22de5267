// Package config loads the tenten TOML configuration. All fields have
// working defaults; a missing config file is not an error.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Anki contains the flashcard store endpoint and target decks/models.
type Anki struct {
	Address      string `toml:"address"`
	VocabDeck    string `toml:"vocab_deck"`
	KanjiDeck    string `toml:"kanji_deck"`
	RadicalDeck  string `toml:"radical_deck"`
	VocabModel   string `toml:"vocab_model"`
	KanjiModel   string `toml:"kanji_model"`
	RadicalModel string `toml:"radical_model"`
}

// Jisho contains the dictionary service endpoint.
type Jisho struct {
	BaseURL string `toml:"base_url"`
}

// WaniKani contains the snapshot source API settings.
type WaniKani struct {
	BaseURL   string `toml:"base_url"`
	TokenFile string `toml:"token_file"`
}

// Paths contains local file locations.
type Paths struct {
	Snapshot string `toml:"snapshot"`
	CacheDB  string `toml:"cache_db"`
}

// Media controls how radical glyph images reach the cards.
type Media struct {
	// EmbedInline switches radical glyphs from uploaded media files to
	// base64 data URIs embedded per card. Uploading deduplicates radicals
	// shared across kanji; inline needs no store round-trip.
	EmbedInline bool `toml:"embed_inline"`
}

// Config is the full tenten configuration.
type Config struct {
	Anki     Anki     `toml:"anki"`
	Jisho    Jisho    `toml:"jisho"`
	WaniKani WaniKani `toml:"wanikani"`
	Paths    Paths    `toml:"paths"`
	Media    Media    `toml:"media"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Anki: Anki{
			Address:      "http://127.0.0.1:8765",
			VocabDeck:    "TenTen::Vocabs",
			KanjiDeck:    "TenTen::Kanjis",
			RadicalDeck:  "TenTen::Radicals",
			VocabModel:   "TenTen_Vocab",
			KanjiModel:   "TenTen_Kanji",
			RadicalModel: "TenTen_Radical",
		},
		Jisho: Jisho{
			BaseURL: "https://jisho.org",
		},
		WaniKani: WaniKani{
			BaseURL:   "https://api.wanikani.com/v2",
			TokenFile: "wanikani_token",
		},
		Paths: Paths{
			Snapshot: "wanikani_data.json",
			CacheDB:  "tenten.db",
		},
	}
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Sample returns an annotated example config file.
func Sample() string { return sampleConfig }
