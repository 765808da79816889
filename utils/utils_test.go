package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFrontmatter(t *testing.T) {
	doc := []byte("---\npage: saluti\n---\n| it | fr |\n")

	if got := string(Frontmatter(doc)); got != "page: saluti\n" {
		t.Errorf("Frontmatter() = %q", got)
	}
	if got := string(RemoveFrontmatter(doc)); got != "| it | fr |\n" {
		t.Errorf("RemoveFrontmatter() = %q", got)
	}

	plain := []byte("| it | fr |\n")
	if Frontmatter(plain) != nil {
		t.Error("Expected no front matter")
	}
	if string(RemoveFrontmatter(plain)) != string(plain) {
		t.Error("Content without front matter should be unchanged")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("FRASI_TEST_DIR", "decks")

	if got, want := ExpandPath("~/x"), filepath.Join(home, "x"); got != want {
		t.Errorf("ExpandPath(~/x) = %q, want %q", got, want)
	}
	if got := ExpandPath("/tmp/$FRASI_TEST_DIR"); got != "/tmp/decks" {
		t.Errorf("ExpandPath() = %q", got)
	}
	if ExpandPath("") != "" {
		t.Error("Empty path should stay empty")
	}
}

func TestIsMarkdownFile(t *testing.T) {
	for name, want := range map[string]bool{
		"saluti.md":       true,
		"SALUTI.MARKDOWN": true,
		"saluti.json":     false,
		"saluti":          false,
	} {
		if got := IsMarkdownFile(name); got != want {
			t.Errorf("IsMarkdownFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestValidStyle(t *testing.T) {
	if !ValidStyle("auto") || !ValidStyle("dark") {
		t.Error("Built-in styles should be valid")
	}
	if ValidStyle("/no/such/style.json") {
		t.Error("Missing style file should be invalid")
	}
}
