package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func TestAnalyzeProducesBaseFormsAndReadings(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("create analyzer: %v", err)
	}

	tokens := analyzer.Analyze("私はパンを食べました")
	if len(tokens) == 0 {
		t.Fatal("no tokens")
	}

	found := false
	for _, tok := range tokens {
		if tok.Surface == "食べ" {
			found = true
			if tok.BaseForm != "食べる" {
				t.Errorf("base form = %q, want 食べる", tok.BaseForm)
			}
			if tok.PrimaryPOS() != "動詞" {
				t.Errorf("primary POS = %q, want 動詞", tok.PrimaryPOS())
			}
			if tok.Reading == "" {
				t.Error("expected a reading for 食べ")
			}
		}
	}
	if !found {
		t.Fatalf("token 食べ not found in %v", tokens)
	}
}

func TestCandidateWords(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("create analyzer: %v", err)
	}

	words := analyzer.CandidateWords("私はパンを食べました。走って逃げた。パンを食べた。")

	want := map[string]bool{"食べる": true, "走る": true, "逃げる": true}
	got := make(map[string]int)
	for _, w := range words {
		got[w]++
	}
	for w := range want {
		if got[w] != 1 {
			t.Errorf("candidate %q appeared %d times, want exactly once", w, got[w])
		}
	}
	for _, w := range words {
		if w == "パン" {
			t.Error("kana-only word パン must not be a candidate")
		}
	}
}

func TestCandidateWordsSkipsNumbers(t *testing.T) {
	analyzer, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("create analyzer: %v", err)
	}

	for _, w := range analyzer.CandidateWords("三人で二時間歩いた") {
		if w == "三" || w == "二" {
			t.Errorf("numeral %q must not be a candidate", w)
		}
	}
}

func TestReadArticleExtractsTextWithoutFurigana(t *testing.T) {
	content, err := os.ReadFile("testdata/article.html")
	if err != nil {
		t.Fatalf("read test data: %v", err)
	}

	u, _ := url.Parse("http://localhost/article")
	article, err := ReadArticle(strings.NewReader(string(SanitizeRuby(content))), u)
	if err != nil {
		t.Fatalf("read article: %v", err)
	}

	if !strings.Contains(article.Title, "朝の市場") {
		t.Errorf("title = %q", article.Title)
	}
	if len(article.Text) < 50 {
		t.Errorf("extracted text too short: %d chars", len(article.Text))
	}
	if strings.Contains(article.Text, "喫茶店きっさてん") {
		t.Error("furigana leaked into extracted text")
	}
}

func TestFetchArticle(t *testing.T) {
	content, err := os.ReadFile("testdata/article.html")
	if err != nil {
		t.Fatalf("read test data: %v", err)
	}

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write(content)
	}))
	defer srv.Close()

	article, err := FetchArticle(context.Background(), srv.Client(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("fetch article: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("request lacked a browser user agent: %q", gotUA)
	}
	if !strings.Contains(article.Title, "朝の市場") {
		t.Errorf("title = %q", article.Title)
	}
}

func TestFetchArticleRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := FetchArticle(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple ruby",
			input:    "<ruby>漢字<rt>かんじ</rt></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "ruby with rp",
			input:    "<ruby>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "multiple ruby",
			input:    "<ruby>私<rt>わたし</rt></ruby>は<ruby>猫<rt>ねこ</rt></ruby>である",
			expected: "<ruby>私</ruby>は<ruby>猫</ruby>である",
		},
		{
			name:     "attributes in tags",
			input:    "<ruby class='test'>漢字<rt class='reading'>かんじ</rt></ruby>",
			expected: "<ruby class='test'>漢字</ruby>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeRuby([]byte(tt.input))
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}
