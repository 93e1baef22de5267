package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"tenten/pkg/anki"
	"tenten/pkg/cards"
	"tenten/pkg/config"
	"tenten/pkg/db"
	"tenten/pkg/jisho"
	"tenten/pkg/pipeline"
	"tenten/pkg/subjects"
)

// defaultConfigPath is resolved relative to the working directory, like
// the snapshot and cache files it points at.
const defaultConfigPath = "tenten.toml"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
		return strings.TrimSpace(*c.configFlag)
	}
	return defaultConfigPath
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

// openDB opens the local cache database and applies migrations. The
// caller owns the handle.
func (c *commandContext) openDB() (*sql.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite3", cfg.Paths.CacheDB)
	if err != nil {
		return nil, err
	}
	if err := db.InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// newPipeline assembles the sync pipeline from configuration: snapshot,
// dictionary client, flashcard store, and card synthesizer. The conn is
// shared by the dictionary cache and the sync journal.
func (c *commandContext) newPipeline(conn *sql.DB) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	snap, err := subjects.Load(cfg.Paths.Snapshot)
	if err != nil {
		return nil, err
	}

	dict := jisho.NewClient()
	dict.BaseURL = cfg.Jisho.BaseURL
	dict.Cache = conn

	store := anki.NewClient(cfg.Anki.Address)

	assets := cards.NewAssetResolver(store)
	assets.EmbedInline = cfg.Media.EmbedInline

	synth := &cards.Synthesizer{
		Snapshot:    snap,
		Assets:      assets,
		VocabDeck:   cards.Deck{Name: cfg.Anki.VocabDeck, Model: cfg.Anki.VocabModel},
		KanjiDeck:   cards.Deck{Name: cfg.Anki.KanjiDeck, Model: cfg.Anki.KanjiModel},
		RadicalDeck: cards.Deck{Name: cfg.Anki.RadicalDeck, Model: cfg.Anki.RadicalModel},
	}

	return &pipeline.Pipeline{
		Snapshot:   snap,
		Dictionary: dict,
		Store:      store,
		Synth:      synth,
		Journal:    conn,
		Logger:     log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}
