// Package utils provides helper functions shared by the CLI and the TUI.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

var yamlPattern = regexp.MustCompile(`(?m)^---\r?\n(\s*\r?\n)?`)

// detectFrontmatter returns the start and end offsets of a front matter
// block, or -1, -1.
func detectFrontmatter(c []byte) []int {
	if matches := yamlPattern.FindAllIndex(c, 2); len(matches) > 1 {
		return []int{matches[0][0], matches[1][1]}
	}
	return []int{-1, -1}
}

// RemoveFrontmatter removes the front matter header of a markdown file.
func RemoveFrontmatter(content []byte) []byte {
	if b := detectFrontmatter(content); b[0] == 0 {
		return content[b[1]:]
	}
	return content
}

// Frontmatter returns the YAML between the front matter delimiters of a
// markdown file, or nil when there is none.
func Frontmatter(content []byte) []byte {
	matches := yamlPattern.FindAllIndex(content, 2)
	if len(matches) < 2 || matches[0][0] != 0 {
		return nil
	}
	return content[matches[0][1]:matches[1][0]]
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// IsMarkdownFile returns whether the filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	return slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(filename)))
}

// GlamourStyle returns a glamour.TermRendererOption based on the given
// style name or JSON path.
func GlamourStyle(style string) glamour.TermRendererOption {
	switch {
	case style == styles.AutoStyle:
		return glamour.WithAutoStyle()
	case styles.DefaultStyles[style] != nil:
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(ExpandPath(style))
	}
}

// ValidStyle reports whether style names a built-in glamour style or an
// existing JSON file.
func ValidStyle(style string) bool {
	if style == styles.AutoStyle || styles.DefaultStyles[style] != nil {
		return true
	}
	_, err := os.Stat(ExpandPath(style))
	return err == nil
}
