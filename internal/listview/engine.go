// Package listview is the shared fetch/filter/pagination engine behind every
// table and listing view: jobs, applications, and the admin panels. Each view
// owns one engine; the engine owns the page state and keeps stale responses
// from overwriting fresh ones.
package listview

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/bdcmjobs/jobdesk/internal/api"
)

// Fetcher loads one page of items for the given filters.
type Fetcher[T any, F any] func(ctx context.Context, page, pageSize int, filters F) ([]T, api.ListMeta, error)

// State is an immutable snapshot of the engine for rendering. An empty Items
// with a nil Err is a valid state, not a loading or error state.
type State[T any, F any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	Filters    F
	Err        error
}

// Engine drives a paginated, filterable listing.
type Engine[T any, F any] struct {
	mu       sync.Mutex
	fetch    Fetcher[T, F]
	pageSize int
	seq      uint64

	items      []T
	page       int
	totalItems int
	totalPages int
	filters    F
	err        error
}

func NewEngine[T any, F any](fetch Fetcher[T, F], pageSize int) *Engine[T, F] {
	return &Engine[T, F]{fetch: fetch, pageSize: pageSize, page: 1}
}

// Load fetches the current page with the current filters.
func (e *Engine[T, F]) Load(ctx context.Context) {
	e.mu.Lock()
	page, filters := e.page, e.filters
	e.mu.Unlock()
	e.refresh(ctx, page, filters)
}

// SetPage navigates to page n, clamped to [1, totalPages], and re-fetches.
// Before the first successful fetch totalPages is unknown and only the lower
// bound is enforced.
func (e *Engine[T, F]) SetPage(ctx context.Context, n int) {
	e.mu.Lock()
	if n < 1 {
		n = 1
	}
	if e.totalPages > 0 && n > e.totalPages {
		n = e.totalPages
	}
	filters := e.filters
	e.mu.Unlock()
	e.refresh(ctx, n, filters)
}

// SetFilters stores a filter set without fetching. Used to hydrate a fresh
// engine from URL parameters before the first Load.
func (e *Engine[T, F]) SetFilters(f F) {
	e.mu.Lock()
	e.filters = f
	e.mu.Unlock()
}

// ApplyFilters replaces the filter set, resets to page 1, and re-fetches.
func (e *Engine[T, F]) ApplyFilters(ctx context.Context, f F) {
	e.refresh(ctx, 1, f)
}

// Snapshot returns the state for rendering.
func (e *Engine[T, F]) Snapshot() State[T, F] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State[T, F]{
		Items:      e.items,
		Page:       e.page,
		PageSize:   e.pageSize,
		TotalItems: e.totalItems,
		TotalPages: e.totalPages,
		Filters:    e.filters,
		Err:        e.err,
	}
}

func (e *Engine[T, F]) refresh(ctx context.Context, page int, filters F) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	items, meta, err := e.fetch(ctx, page, e.pageSize, filters)

	// A page past the end comes back empty. That empty set is false, not a
	// valid state, so fetch the actual last page instead of rendering it.
	if err == nil && meta.Pages > 0 && page > meta.Pages {
		page = meta.Pages
		items, meta, err = e.fetch(ctx, page, e.pageSize, filters)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq {
		// A newer fetch was issued while this one was in flight.
		return
	}
	e.page, e.filters = page, filters
	if err != nil {
		e.err = err
		return
	}
	e.err = nil
	e.items = items
	e.totalItems = meta.Total
	e.totalPages = meta.Pages
	if e.totalPages < 1 {
		e.totalPages = 1
	}
	if e.page > e.totalPages {
		e.page = e.totalPages
	}
}

var fold = cases.Fold()

// Refine narrows items to those whose key contains query, compared
// case-folded. An empty query returns items unchanged. Used for the
// client-side search boxes on the admin tables.
func Refine[T any](items []T, query string, key func(T) string) []T {
	if query == "" {
		return items
	}
	q := fold.String(query)
	var out []T
	for _, it := range items {
		if strings.Contains(fold.String(key(it)), q) {
			out = append(out, it)
		}
	}
	return out
}
