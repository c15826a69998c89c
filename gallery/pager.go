// Package gallery implements the infinite-scroll GIF list: pages of a
// category are fetched strictly in order and appended to one list.
package gallery

import (
	"context"
	"strings"
	"sync"

	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
)

// DefaultPageSize is the number of GIFs requested per page
const DefaultPageSize = 20

// Fetcher loads one window of GIFs matching category
type Fetcher interface {
	SearchGifs(ctx context.Context, category string, limit, offset int) ([]hasura.Gif, error)
}

// Outcome describes what a LoadNextPage call did
type Outcome int

const (
	// Skipped means no fetch was issued (one in flight, or exhausted)
	Skipped Outcome = iota
	// Appended means a non-empty page was added and the cursor advanced
	Appended
	// Exhausted means the page came back empty
	Exhausted
	// Discarded means the category changed while the fetch was in flight
	Discarded
	// Failed means the fetch returned an error
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Appended:
		return "appended"
	case Exhausted:
		return "exhausted"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Pager accumulates pages of GIFs for the current category. It is safe for
// concurrent use.
type Pager struct {
	fetcher  Fetcher
	pageSize int

	mu         sync.Mutex
	category   string
	items      []hasura.Gif
	page       int
	inFlight   bool
	exhausted  bool
	generation uint64
	lastErr    error
}

// NewPager creates a pager. pageSize <= 0 means DefaultPageSize.
func NewPager(fetcher Fetcher, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		fetcher:  fetcher,
		pageSize: pageSize,
		page:     1,
	}
}

// NormalizeCategory trims and lowercases a category filter
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SetCategory switches the pager to category. When it differs from the
// current one the list and cursor reset before it returns, and any fetch
// still in flight will be discarded. Reports whether anything changed.
func (p *Pager) SetCategory(category string) bool {
	category = NormalizeCategory(category)

	p.mu.Lock()
	defer p.mu.Unlock()

	if category == p.category && p.generation > 0 {
		return false
	}

	logger.Debug("Category changed, resetting pager", map[string]interface{}{
		"from": p.category,
		"to":   category,
	})

	p.category = category
	p.items = nil
	p.page = 1
	p.inFlight = false
	p.exhausted = false
	p.lastErr = nil
	p.generation++
	return true
}

// LoadNextPage fetches the page under the cursor. Calls made while another
// fetch is in flight, or after an empty page, return Skipped without
// touching upstream.
func (p *Pager) LoadNextPage(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	if p.inFlight || p.exhausted {
		p.mu.Unlock()
		return Skipped, nil
	}
	p.inFlight = true
	gen := p.generation
	category := p.category
	page := p.page
	p.mu.Unlock()

	offset := (page - 1) * p.pageSize
	gifs, err := p.fetcher.SearchGifs(ctx, category, p.pageSize, offset)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		logger.Debug("Discarding stale page", map[string]interface{}{
			"category": category,
			"page":     page,
		})
		return Discarded, nil
	}
	p.inFlight = false

	if err != nil {
		p.lastErr = err
		logger.Error("Error fetching gifs", err, map[string]interface{}{
			"category": category,
			"page":     page,
		})
		return Failed, err
	}
	p.lastErr = nil

	if len(gifs) == 0 {
		p.exhausted = true
		logger.Info("No more GIFs to load", map[string]interface{}{
			"category": category,
			"page":     page,
		})
		return Exhausted, nil
	}

	p.items = append(p.items, gifs...)
	p.page++
	return Appended, nil
}

// Items returns a copy of the accumulated list
func (p *Pager) Items() []hasura.Gif {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]hasura.Gif(nil), p.items...)
}

// Len returns the number of accumulated items
func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Page returns the page number the next fetch will request
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Category returns the current normalized category
func (p *Pager) Category() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.category
}

// InFlight reports whether a fetch for the current category is running
func (p *Pager) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Exhausted reports whether the last page came back empty
func (p *Pager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// Err returns the error from the most recent failed fetch, if the next
// fetch has not yet succeeded.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
