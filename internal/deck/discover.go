package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muesli/gitcha"
)

// Extensions lists the file patterns recognized as decks.
var Extensions = []string{
	"*.json", "*.yaml", "*.yml", "*.md", "*.markdown",
	"*.json.zst", "*.yaml.zst", "*.yml.zst", "*.md.zst", "*.markdown.zst",
}

var ignorePatterns = []string{"node_modules", ".*"}

// File is a deck file found by Discover.
type File struct {
	Path    string // absolute
	Rel     string // relative to the searched directory
	Size    int64
	ModTime time.Time
}

// Page returns the page name the file would load under without a page field.
func (f File) Page() string {
	return pageFromSource(f.Path)
}

// Discover lists deck files beneath dir, sorted by relative path. Files
// ignored by git and hidden directories are skipped unless all is set.
func Discover(dir string, all bool) ([]File, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(abs); err != nil {
		return nil, err
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var ch chan gitcha.SearchResult
	if all {
		ch, err = gitcha.FindAllFilesExcept(abs, Extensions, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(abs, Extensions, ignorePatterns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}

	var files []File
	for res := range ch {
		rel, err := filepath.Rel(abs, res.Path)
		if err != nil {
			rel = res.Path
		}
		f := File{Path: res.Path, Rel: filepath.ToSlash(rel)}
		if res.Info != nil {
			f.Size = res.Info.Size()
			f.ModTime = res.Info.ModTime()
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Rel) < strings.ToLower(files[j].Rel)
	})
	return files, nil
}
