package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cinema_storefront/model"

	"github.com/stretchr/testify/require"
)

func makeOrders(prefix string, n int) []model.OrderSummary {
	out := make([]model.OrderSummary, n)
	for i := range out {
		out[i] = model.OrderSummary{
			ID:         uint(i + 1),
			PublicCode: fmt.Sprintf("ORD-%s-%03d", prefix, i+1),
			Status:     "PAID",
		}
	}
	return out
}

func TestPager_LoadMore(t *testing.T) {
	t.Parallel()

	t.Run("accumulates pages without duplicates in fetch order", func(t *testing.T) {
		all := makeOrders("A", 25)
		fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			// Overlap the window by one to simulate a shifting server list.
			start := offset
			if start > 0 {
				start--
			}
			return all[start:end], nil
		}
		p := NewPager(fetch, 10)

		items, hasMore, err := p.Reset(context.Background(), model.FeedFilters{})
		require.NoError(t, err)
		require.True(t, hasMore)
		require.Len(t, items, 10)

		items, _, err = p.LoadMore(context.Background())
		require.NoError(t, err)

		seen := map[string]bool{}
		for i, o := range items {
			require.False(t, seen[o.PublicCode], "duplicate %s", o.PublicCode)
			seen[o.PublicCode] = true
			require.Equal(t, all[i].PublicCode, o.PublicCode, "fetch order preserved")
		}
	})

	t.Run("short page ends the collection", func(t *testing.T) {
		// Five active orders against a page size of ten: one page, done.
		fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
			if offset > 0 {
				return nil, nil
			}
			return makeOrders("B", 5), nil
		}
		p := NewPager(fetch, 10)

		items, hasMore, err := p.Reset(context.Background(), model.FeedFilters{Tab: "active"})
		require.NoError(t, err)
		require.Len(t, items, 5)
		require.False(t, hasMore)

		items, hasMore, err = p.LoadMore(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 5, "exhausted pager is a no-op")
		require.False(t, hasMore)
	})

	t.Run("failed page leaves cursor untouched and retries", func(t *testing.T) {
		calls := 0
		fail := true
		fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
			calls++
			if calls == 1 {
				return makeOrders("C", 10), nil
			}
			require.Equal(t, 10, offset, "offset must not advance past a failure")
			if fail {
				return nil, errors.New("boom")
			}
			return makeOrders("D", 3), nil
		}
		p := NewPager(fetch, 10)

		_, _, err := p.Reset(context.Background(), model.FeedFilters{})
		require.NoError(t, err)

		items, hasMore, err := p.LoadMore(context.Background())
		require.Error(t, err)
		require.Len(t, items, 10)
		require.True(t, hasMore, "failure is retryable, not terminal")

		fail = false
		items, hasMore, err = p.LoadMore(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 13)
		require.False(t, hasMore)
	})

	t.Run("in-flight guard serializes simultaneous triggers", func(t *testing.T) {
		calls := 0
		var p *Pager[model.OrderSummary]
		fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
			calls++
			if calls == 1 {
				// A second trigger fires while this fetch is in flight; it
				// must be a no-op rather than a second request.
				items, _, err := p.LoadMore(ctx)
				require.NoError(t, err)
				require.Empty(t, items)
			}
			return makeOrders("E", 10), nil
		}
		p = NewPager(fetch, 10)

		_, _, err := p.Reset(context.Background(), model.FeedFilters{})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})
}

func TestPager_ResetDiscardsStale(t *testing.T) {
	t.Parallel()

	var p *Pager[model.OrderSummary]
	fetch := func(ctx context.Context, f model.FeedFilters, offset, limit int) ([]model.OrderSummary, error) {
		if f.Tab == "active" {
			// While this fetch is in flight the user switches tabs; the
			// reset below wins and this response must be thrown away.
			items, hasMore, err := p.Reset(ctx, model.FeedFilters{Tab: "past"})
			require.NoError(t, err)
			require.True(t, hasMore)
			require.Len(t, items, 10)
			return makeOrders("STALE", 10), nil
		}
		return makeOrders("PAST", 10), nil
	}
	p = NewPager(fetch, 10)

	_, _, err := p.Reset(context.Background(), model.FeedFilters{Tab: "active"})
	require.ErrorIs(t, err, ErrSuperseded)

	items, _ := p.Items()
	require.Len(t, items, 10)
	for _, o := range items {
		require.Contains(t, o.PublicCode, "PAST", "no stale item may survive the reset")
	}
}
