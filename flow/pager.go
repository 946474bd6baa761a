package flow

import (
	"context"
	"errors"
	"sync"

	"cinema_storefront/model"
)

// ErrSuperseded marks a response that arrived for a no-longer-current
// scan/reset/selection and was discarded.
var ErrSuperseded = errors.New("flow: response superseded")

// Keyed yields the identifier used for de-duplication across pages.
type Keyed interface {
	Key() string
}

// PageFetcher loads one page for a filtered view. Fewer items than limit is
// the only end-of-collection signal.
type PageFetcher[T Keyed] func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]T, error)

// Pager accumulates a de-duplicated, ordered sequence of items fetched in
// fixed-size pages. Reset and LoadMore are the only two inputs; rendering is
// somebody else's problem. Stale responses are discarded by generation tag,
// which gives last-reset-wins without cancelling in-flight requests.
type Pager[T Keyed] struct {
	fetch    PageFetcher[T]
	pageSize int

	mu         sync.Mutex
	generation uint64
	filters    model.FeedFilters
	items      []T
	seen       map[string]bool
	offset     int
	hasMore    bool
	inFlight   bool
}

func NewPager[T Keyed](fetch PageFetcher[T], pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	return &Pager[T]{
		fetch:    fetch,
		pageSize: pageSize,
		seen:     make(map[string]bool),
		hasMore:  true,
	}
}

// Reset clears accumulated state for a new filter set and issues the first
// fetch. State is cleared before the fetch so a stale page from the old
// filters can never land in the new list.
func (p *Pager[T]) Reset(ctx context.Context, f model.FeedFilters) ([]T, bool, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.filters = f
	p.items = nil
	p.seen = make(map[string]bool)
	p.offset = 0
	p.hasMore = true
	p.inFlight = true
	p.mu.Unlock()

	return p.fetchPage(ctx, gen, f, 0)
}

// LoadMore fetches the next page. No-op while a fetch is in flight or when
// the collection is exhausted; the in-flight guard is what serializes two
// triggers racing each other.
func (p *Pager[T]) LoadMore(ctx context.Context) ([]T, bool, error) {
	p.mu.Lock()
	if p.inFlight || !p.hasMore {
		items, hasMore := p.snapshotLocked()
		p.mu.Unlock()
		return items, hasMore, nil
	}
	gen := p.generation
	f := p.filters
	offset := p.offset
	p.inFlight = true
	p.mu.Unlock()

	return p.fetchPage(ctx, gen, f, offset)
}

// Items returns the accumulated list and the has-more flag.
func (p *Pager[T]) Items() ([]T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pager[T]) fetchPage(ctx context.Context, gen uint64, f model.FeedFilters, offset int) ([]T, bool, error) {
	page, err := p.fetch(ctx, f, offset, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		// A reset won the race; this response belongs to a dead view.
		items, hasMore := p.snapshotLocked()
		return items, hasMore, ErrSuperseded
	}

	p.inFlight = false
	if err != nil {
		// Offset and has-more untouched: the same page is retried on the
		// next trigger.
		items, hasMore := p.snapshotLocked()
		return items, hasMore, err
	}

	for _, item := range page {
		if p.seen[item.Key()] {
			continue
		}
		p.seen[item.Key()] = true
		p.items = append(p.items, item)
	}
	p.offset += len(page)
	p.hasMore = len(page) == p.pageSize

	items, hasMore := p.snapshotLocked()
	return items, hasMore, nil
}

func (p *Pager[T]) snapshotLocked() ([]T, bool) {
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out, p.hasMore
}
