// Package revision counts revisions: each phrase heard counts one, each
// correct quiz answer two. Counts are kept per page and in total.
package revision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dgnsrekt/frasi/internal/store"
)

const (
	// KeyTotal holds the running total.
	KeyTotal = "it-rev-total"

	keyPrefix = "it-rev-"

	// DefaultPage is used when a deck names no page.
	DefaultPage = "home"
)

// ErrNegative is returned by Inc for a negative increment.
var ErrNegative = errors.New("revision increment must not be negative")

// PageKey returns the storage key of a page counter.
func PageKey(page string) string {
	return keyPrefix + page
}

// PageCount is the counter of one page.
type PageCount struct {
	Page  string
	Count int
}

// Counter increments the total and the counter of its page.
type Counter struct {
	store store.Store
	page  string
	mu    sync.Mutex
}

// New returns a counter for page. An empty page is DefaultPage.
func New(s store.Store, page string) *Counter {
	page = strings.TrimSpace(page)
	if page == "" || page == "total" {
		page = DefaultPage
	}
	return &Counter{store: s, page: page}
}

// CurrentPage returns the page this counter increments.
func (c *Counter) CurrentPage() string {
	return c.page
}

// read returns the stored integer at key. Missing or unparseable values
// count as 0.
func (c *Counter) read(key string) (int, error) {
	v, ok, err := c.store.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// Inc adds n to the total and the page counter and returns the new total.
func (c *Counter) Inc(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegative, n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	total, err := c.read(KeyTotal)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return total, nil
	}

	pageKey := PageKey(c.page)
	page, err := c.read(pageKey)
	if err != nil {
		return 0, err
	}

	total += n
	if err := c.store.Set(KeyTotal, strconv.Itoa(total)); err != nil {
		return 0, fmt.Errorf("save total: %w", err)
	}
	if err := c.store.Set(pageKey, strconv.Itoa(page+n)); err != nil {
		return total, fmt.Errorf("save page %s: %w", c.page, err)
	}
	return total, nil
}

// Total returns the running total.
func (c *Counter) Total() (int, error) {
	return c.read(KeyTotal)
}

// Page returns the counter of page.
func (c *Counter) Page(page string) (int, error) {
	return c.read(PageKey(page))
}

// Pages returns every page counter, sorted by page name.
func (c *Counter) Pages() ([]PageCount, error) {
	keys, err := store.KeysWithPrefix(c.store, keyPrefix)
	if err != nil {
		return nil, err
	}

	var pages []PageCount
	for _, k := range keys {
		if k == KeyTotal {
			continue
		}
		n, err := c.read(k)
		if err != nil {
			return nil, err
		}
		pages = append(pages, PageCount{Page: strings.TrimPrefix(k, keyPrefix), Count: n})
	}
	return pages, nil
}

// Reset removes the total and every page counter.
func (c *Counter) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := store.KeysWithPrefix(c.store, keyPrefix)
	if err != nil {
		return err
	}
	var errs []error
	for _, k := range keys {
		errs = append(errs, c.store.Delete(k))
	}
	return errors.Join(errs...)
}

// Label renders the counter badge.
func Label(total int) string {
	return fmt.Sprintf("Révisions : %d", total)
}
