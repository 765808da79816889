package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/utils"
	"github.com/klauspost/compress/zstd"
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// maxDeckSize bounds what is read from a URL or decompressed.
const maxDeckSize = 8 << 20

var httpClient = &http.Client{Timeout: 15 * time.Second}

// IsURL reports whether src should be fetched over HTTP.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load reads a deck from a local path or an http(s) URL.
func Load(ctx context.Context, src string) (*Deck, error) {
	var (
		data []byte
		name = src
		err  error
	)
	if IsURL(src) {
		data, err = fetch(ctx, src)
		if u, perr := url.Parse(src); perr == nil {
			name = path.Base(u.Path)
		}
	} else {
		data, err = os.ReadFile(utils.ExpandPath(src))
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLoad, src, err)
	}

	d, err := Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	d.Source = src
	log.Debug("loaded deck", "source", src, "page", d.Page, "phrases", len(d.Phrases))
	return d, nil
}

func fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "frasi")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDeckSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDeckSize {
		return nil, fmt.Errorf("deck larger than %d bytes", maxDeckSize)
	}
	return data, nil
}

// Parse decodes a deck whose format is given by the extension of name.
// A trailing .zst means the content is zstd compressed.
func Parse(data []byte, name string) (*Deck, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".zst") {
		var err error
		if data, err = decompress(data); err != nil {
			return nil, err
		}
		lower = strings.TrimSuffix(lower, ".zst")
	}

	var (
		d   *Deck
		err error
	)
	switch ext := filepath.Ext(lower); {
	case ext == ".json":
		d, err = parseJSON(data)
	case ext == ".yaml" || ext == ".yml":
		d, err = parseYAML(data)
	case utils.IsMarkdownFile(lower):
		d, err = parseMarkdown(data)
	case ext == "":
		d, err = sniff(data)
	default:
		return nil, fmt.Errorf("%w %q", ErrFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	d.Page = strings.TrimSpace(d.Page)
	if d.Page == "" {
		d.Page = pageFromSource(name)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDeckSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress deck: %w", err)
	}
	return out, nil
}

// sniff guesses the format of extensionless content, as served by some URLs.
func sniff(data []byte) (*Deck, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, ErrEmpty
	case trimmed[0] == '[' || trimmed[0] == '{':
		return parseJSON(trimmed)
	case bytes.Contains(trimmed, []byte("|")):
		return parseMarkdown(data)
	default:
		return parseYAML(data)
	}
}

func parseJSON(data []byte) (*Deck, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var phrases []Phrase
		if err := json.Unmarshal(trimmed, &phrases); err != nil {
			return nil, fmt.Errorf("invalid JSON deck: %w", err)
		}
		return &Deck{Phrases: phrases}, nil
	}

	var d Deck
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("invalid JSON deck: %w", err)
	}
	return &d, nil
}

func parseYAML(data []byte) (*Deck, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML deck: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmpty
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var phrases []Phrase
		if err := root.Decode(&phrases); err != nil {
			return nil, fmt.Errorf("invalid YAML deck: %w", err)
		}
		return &Deck{Phrases: phrases}, nil
	case yaml.MappingNode:
		var d Deck
		if err := root.Decode(&d); err != nil {
			return nil, fmt.Errorf("invalid YAML deck: %w", err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("invalid YAML deck: line %d: expected a list or a mapping", root.Line)
	}
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// parseMarkdown collects the rows of every table in the document. The page
// comes from a front matter "page" key. A header whose first cell reads
// "fr" or "français" swaps the columns.
func parseMarkdown(data []byte) (*Deck, error) {
	d := &Deck{}
	if fm := utils.Frontmatter(data); fm != nil {
		var meta struct {
			Page string `yaml:"page"`
		}
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return nil, fmt.Errorf("invalid front matter: %w", err)
		}
		d.Page = meta.Page
	}

	source := utils.RemoveFrontmatter(data)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var frFirst bool
	err := gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch n.Kind() {
		case east.KindTable:
			frFirst = false
		case east.KindTableHeader:
			cells := rowCells(n, source)
			if len(cells) > 0 {
				first := fold(cells[0])
				frFirst = first == "fr" || first == fold("français") || first == "francais"
			}
			return gast.WalkSkipChildren, nil
		case east.KindTableRow:
			cells := rowCells(n, source)
			if len(cells) < 2 {
				return gast.WalkSkipChildren, nil
			}
			p := Phrase{IT: cells[0], FR: cells[1]}
			if frFirst {
				p.IT, p.FR = p.FR, p.IT
			}
			d.Phrases = append(d.Phrases, p)
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func rowCells(row gast.Node, source []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != east.KindTableCell {
			continue
		}
		var b strings.Builder
		inlineText(&b, c, source)
		cells = append(cells, strings.TrimSpace(b.String()))
	}
	return cells
}

// inlineText appends the plain text of n, dropping emphasis and link markup.
func inlineText(b *strings.Builder, n gast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gast.String:
			b.Write(t.Value)
		default:
			inlineText(b, c, source)
		}
	}
}
