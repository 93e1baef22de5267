package cards

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"tenten/pkg/anki"
	"tenten/pkg/subjects"
)

// ErrNoGlyphSource is returned for a radical with neither a literal
// glyph nor any usable character image.
var ErrNoGlyphSource = errors.New("radical has no glyph source")

// preferredImageStyle is the image variant picked for image-only
// radicals when available.
const preferredImageStyle = "32px"

// MediaStore is the subset of the flashcard store used for asset
// uploads.
type MediaStore interface {
	StoreMediaFile(ctx context.Context, filename string, data []byte) (anki.StoreResult, error)
}

// AssetResolver turns radicals into displayable glyph references and
// vocabulary into sound references, fetching and uploading binary assets
// as needed. Fetch failures are fatal to the run; upload "no result"
// acks mean the store already holds the content.
type AssetResolver struct {
	HTTPClient *http.Client
	Store      MediaStore
	// EmbedInline embeds glyph bytes as base64 data URIs in the card text
	// instead of uploading them. Uploading deduplicates radicals reused
	// across many kanji cards.
	EmbedInline bool
}

// NewAssetResolver creates a resolver uploading through store.
func NewAssetResolver(store MediaStore) *AssetResolver {
	return &AssetResolver{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Store:      store,
	}
}

// RadicalGlyph returns the text to display for a radical: its literal
// characters when it has them, otherwise an image reference synthesized
// from its best character image.
func (a *AssetResolver) RadicalGlyph(ctx context.Context, rad *subjects.Subject) (string, error) {
	if rad.Kind != subjects.KindRadical {
		return "", fmt.Errorf("cards: subject %d is %s, not a radical", rad.ID, rad.Kind)
	}
	if rad.Radical.Characters != "" {
		return rad.Radical.Characters, nil
	}

	img, ok := pickImage(rad.Radical.CharacterImages)
	if !ok {
		return "", fmt.Errorf("%w: radical %d (%s)", ErrNoGlyphSource, rad.ID, rad.PrimaryMeaning())
	}
	data, err := a.fetch(ctx, img.URL)
	if err != nil {
		return "", fmt.Errorf("fetch glyph for radical %d: %w", rad.ID, err)
	}

	if a.EmbedInline || a.Store == nil {
		encoded := base64.StdEncoding.EncodeToString(data)
		return fmt.Sprintf(`<img class="encoded_radical" src="data:%s;base64,%s">`, img.ContentType, encoded), nil
	}

	filename := "radical_" + slugify(rad.PrimaryMeaning()) + extensionFor(img.ContentType)
	if _, err := a.Store.StoreMediaFile(ctx, filename, data); err != nil {
		return "", fmt.Errorf("store glyph %s: %w", filename, err)
	}
	return fmt.Sprintf(`<img src="%s">`, filename), nil
}

// VocabAudio returns a sound reference for the vocabulary subject, or ""
// when the subject is unknown or has no pronunciation audio. The male
// clip is preferred; otherwise the first available is used. The media
// filename derives from the deck and the (possibly furigana-annotated)
// vocabulary text so re-runs address the same file.
func (a *AssetResolver) VocabAudio(ctx context.Context, deck, vocabText string, vocab *subjects.Subject) (string, error) {
	if vocab == nil || vocab.Kind != subjects.KindVocabulary {
		return "", nil
	}
	audios := vocab.Vocabulary.PronunciationAudios
	if len(audios) == 0 {
		return "", nil
	}
	chosen := audios[0]
	for _, au := range audios {
		if au.Metadata.Gender == "male" {
			chosen = au
			break
		}
	}

	data, err := a.fetch(ctx, chosen.URL)
	if err != nil {
		return "", fmt.Errorf("fetch audio for %s: %w", vocab.Characters(), err)
	}

	filename := slugify(deck) + "_" + vocabText + extensionFor(chosen.ContentType)
	if a.Store != nil {
		if _, err := a.Store.StoreMediaFile(ctx, filename, data); err != nil {
			return "", fmt.Errorf("store audio %s: %w", filename, err)
		}
	}
	return fmt.Sprintf("[sound:%s]", filename), nil
}

func (a *AssetResolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// pickImage prefers a PNG in the fixed style, then any PNG, then the
// first image of any type.
func pickImage(images []subjects.CharacterImage) (subjects.CharacterImage, bool) {
	for _, img := range images {
		if img.ContentType == "image/png" && img.Metadata.StyleName == preferredImageStyle {
			return img, true
		}
	}
	for _, img := range images {
		if img.ContentType == "image/png" {
			return img, true
		}
	}
	if len(images) > 0 {
		return images[0], true
	}
	return subjects.CharacterImage{}, false
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/svg+xml":
		return ".svg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	default:
		return ""
	}
}

// slugify lowercases s and collapses anything that is not a letter or
// digit into single dashes, producing stable media filenames.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
