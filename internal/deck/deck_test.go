package deck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const tableDeck = `---
page: saluti
---
# Saluti

| Italiano | Français |
|----------|----------|
| Ciao | Salut |
| **Buongiorno** | Bonjour |

Some text.

| fr | it |
|----|----|
| Merci | Grazie |
`

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantPage string
		want     []Phrase
	}{
		{
			name:     "json array",
			file:     "verbi.json",
			content:  `[{"it":"essere","fr":"être"},{"it":" avere ","fr":"avoir"}]`,
			wantPage: "verbi",
			want:     []Phrase{{"essere", "être"}, {"avere", "avoir"}},
		},
		{
			name:     "json object",
			file:     "x.json",
			content:  `{"page":"cibo","phrases":[{"it":"pane","fr":"pain"}]}`,
			wantPage: "cibo",
			want:     []Phrase{{"pane", "pain"}},
		},
		{
			name:     "yaml list",
			file:     "numeri.yml",
			content:  "- it: uno\n  fr: un\n- it: due\n  fr: deux\n",
			wantPage: "numeri",
			want:     []Phrase{{"uno", "un"}, {"due", "deux"}},
		},
		{
			name:     "yaml mapping",
			file:     "n.yaml",
			content:  "page: colori\nphrases:\n  - it: rosso\n    fr: rouge\n",
			wantPage: "colori",
			want:     []Phrase{{"rosso", "rouge"}},
		},
		{
			name:     "markdown tables",
			file:     "lesson.md",
			content:  tableDeck,
			wantPage: "saluti",
			want:     []Phrase{{"Ciao", "Salut"}, {"Buongiorno", "Bonjour"}, {"Grazie", "Merci"}},
		},
		{
			name:     "extensionless json",
			file:     "deck",
			content:  ` [{"it":"sì","fr":"oui"}]`,
			wantPage: "deck",
			want:     []Phrase{{"sì", "oui"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.content), tt.file)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if d.Page != tt.wantPage {
				t.Errorf("Page = %q, want %q", d.Page, tt.wantPage)
			}
			if len(d.Phrases) != len(tt.want) {
				t.Fatalf("got %d phrases %v, want %v", len(d.Phrases), d.Phrases, tt.want)
			}
			for i := range tt.want {
				if d.Phrases[i] != tt.want[i] {
					t.Errorf("phrase %d = %+v, want %+v", i, d.Phrases[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
		wantMsg string
	}{
		{"empty array", "a.json", `[]`, ErrEmpty, ""},
		{"blank french names index", "a.json", `[{"it":"a","fr":"b"},{"it":"c","fr":"  "}]`, nil, "phrase 1"},
		{"missing italian", "a.yaml", "- fr: oui\n", nil, "phrase 0: missing italian"},
		{"unknown extension", "a.txt", "x", ErrFormat, ""},
		{"broken json", "a.json", `[{`, nil, "invalid JSON"},
		{"yaml scalar", "a.yaml", "ciao", nil, "expected a list"},
		{"markdown without tables", "a.md", "# nothing\n", ErrEmpty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), tt.file)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParse_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	compressed := enc.EncodeAll([]byte("- it: gatto\n  fr: chat\n"), nil)
	_ = enc.Close()

	d, err := Parse(compressed, "animali.yaml.zst")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Page != "animali" || len(d.Phrases) != 1 || d.Phrases[0].IT != "gatto" {
		t.Errorf("unexpected deck %+v", d)
	}

	if _, err := Parse([]byte("not zstd"), "x.json.zst"); err == nil {
		t.Error("expected an error for corrupt zstd data")
	}
}

func TestLoad_File(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cibo.json", `[{"it":"mela","fr":"pomme"}]`)

	d, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Source != p || d.Page != "cibo" {
		t.Errorf("unexpected deck %+v", d)
	}

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/viaggio.json":
			_, _ = w.Write([]byte(`[{"it":"treno","fr":"train"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d, err := Load(context.Background(), srv.URL+"/viaggio.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Page != "viaggio" || d.Phrases[0].FR != "train" {
		t.Errorf("unexpected deck %+v", d)
	}

	src := srv.URL + "/missing.json"
	_, err = Load(context.Background(), src)
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "unable to load "+src) {
		t.Errorf("unexpected message %q", err)
	}
}

func TestLoad_URLCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, srv.URL+"/a.json"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d.Page != DefaultPage {
		t.Errorf("Page = %q, want %q", d.Page, DefaultPage)
	}
	if d.Len() < 4 {
		t.Errorf("starter deck too small for a quiz: %d", d.Len())
	}
}

func TestPageFromSource(t *testing.T) {
	tests := map[string]string{
		"lessons/verbi.yaml.zst": "verbi",
		"cibo.json":              "cibo",
		"":                       DefaultPage,
		".json":                  DefaultPage,
		"deck?x=1":               "deck",
	}
	for in, want := range tests {
		if got := pageFromSource(in); got != want {
			t.Errorf("pageFromSource(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	d := &Deck{Phrases: []Phrase{
		{"Buongiorno", "Bonjour"},
		{"Grazie", "Merci"},
		{"Perché?", "Pourquoi ?"},
	}}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"   ", 3},
		{"GIORNO", 1},
		{"merci", 1},
		{"perchÉ", 1},
		{"o", 2},
		{"xyz", 0},
	}
	for _, tt := range tests {
		if got := d.Filter(tt.query); len(got) != tt.want {
			t.Errorf("Filter(%q) returned %d phrases, want %d", tt.query, len(got), tt.want)
		}
	}

	all := d.Filter("")
	all[0].IT = "changed"
	if d.Phrases[0].IT != "Buongiorno" {
		t.Error("Filter must not expose the deck's backing array")
	}
}

func TestSuggest(t *testing.T) {
	d := &Deck{Phrases: []Phrase{
		{"Buongiorno", "Bonjour"},
		{"Buonanotte", "Bonne nuit"},
		{"Grazie mille", "Merci beaucoup"},
	}}

	got := d.Suggest("bngrno", 5)
	if len(got) == 0 || got[0].Phrase.IT != "Buongiorno" {
		t.Fatalf("expected Buongiorno first, got %+v", got)
	}
	if len(got[0].Indexes) != len("bngrno") {
		t.Errorf("expected %d matched indexes, got %v", len("bngrno"), got[0].Indexes)
	}

	if got := d.Suggest("bon", 1); len(got) != 1 {
		t.Errorf("expected the limit to apply, got %d", len(got))
	}

	typo := d.Suggest("grazia", 3)
	if len(typo) != 1 || typo[0].Phrase.IT != "Grazie mille" || typo[0].Side != SideIT {
		t.Errorf("expected a typo match on Grazie, got %+v", typo)
	}
	if typo[0].Text() != "Grazie mille" {
		t.Errorf("Text() = %q", typo[0].Text())
	}

	if got := d.Suggest("zzzzzz", 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %+v", got)
	}
	if got := d.Suggest("", 3); got != nil {
		t.Errorf("expected nil for a blank query, got %+v", got)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", "[]")
	writeFile(t, dir, "sub/b.yaml", "")
	writeFile(t, dir, "sub/c.md.zst", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, ".hidden/d.yml", "")

	files, err := Discover(dir, false)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
	}
	want := "a.json,sub/b.yaml,sub/c.md.zst"
	if got := strings.Join(rels, ","); got != want {
		t.Errorf("Discover = %s, want %s", got, want)
	}
	if files[2].Page() != "c" {
		t.Errorf("Page() = %q, want c", files[2].Page())
	}

	all, err := Discover(dir, true)
	if err != nil {
		t.Fatalf("Discover(all) failed: %v", err)
	}
	if len(all) < len(files) {
		t.Errorf("all should find at least %d files, got %d", len(files), len(all))
	}

	if _, err := Discover(filepath.Join(dir, "a.json"), false); err == nil {
		t.Error("expected an error for a file")
	}
}
