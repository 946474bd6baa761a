package flow

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"cinema_storefront/constants"
	"cinema_storefront/fulfillment"
	"cinema_storefront/model"

	"github.com/stretchr/testify/require"
)

type fakeRedemptionAPI struct {
	mu           sync.Mutex
	order        model.OrderSummary
	tickets      map[uint]*model.Ticket
	preorders    map[uint]*model.ConcessionPreorder
	markErr      map[uint]error
	resolveCalls int
	onValidate   func(code string)
}

func newFakeRedemptionAPI(order model.OrderSummary) *fakeRedemptionAPI {
	return &fakeRedemptionAPI{
		order:     order,
		tickets:   map[uint]*model.Ticket{},
		preorders: map[uint]*model.ConcessionPreorder{},
		markErr:   map[uint]error{},
	}
}

func (f *fakeRedemptionAPI) ValidateTicketCode(ctx context.Context, code string) (model.ScanResult, error) {
	f.mu.Lock()
	f.resolveCalls++
	cb := f.onValidate
	f.mu.Unlock()
	if cb != nil {
		cb(code)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if code == "BAD" {
		return model.ScanResult{}, &fulfillment.APIError{Status: 404, Message: "unknown code"}
	}
	ids := make([]uint, 0, len(f.tickets))
	for id := range f.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tickets := make([]model.Ticket, 0, len(ids))
	for _, id := range ids {
		tickets = append(tickets, *f.tickets[id])
	}
	kind := model.ScanMultiTicket
	if len(tickets) == 1 {
		kind = model.ScanSingleTicket
	}
	return model.ScanResult{Kind: kind, Order: f.order, Tickets: tickets}, nil
}

func (f *fakeRedemptionAPI) ValidateConcessionCode(ctx context.Context, code string) (model.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++

	preorders := make([]model.ConcessionPreorder, 0, len(f.preorders))
	for _, p := range f.preorders {
		preorders = append(preorders, *p)
	}
	kind := model.ScanMultiPreorder
	if len(preorders) == 1 {
		kind = model.ScanSinglePreorder
	}
	return model.ScanResult{Kind: kind, Order: f.order, Preorders: preorders}, nil
}

func (f *fakeRedemptionAPI) MarkTicketUsed(ctx context.Context, ticketID uint) (model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.markErr[ticketID]; err != nil {
		return model.Ticket{}, err
	}
	t := f.tickets[ticketID]
	if t.Status == constants.TicketUsed {
		return model.Ticket{}, &fulfillment.APIError{Status: 409, Message: "already used"}
	}
	t.Status = constants.TicketUsed
	return *t, nil
}

func (f *fakeRedemptionAPI) MarkConcessionCompleted(ctx context.Context, preorderID uint) (model.ConcessionPreorder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.preorders[preorderID]
	if p.Status == constants.PreorderCompleted {
		return model.ConcessionPreorder{}, &fulfillment.APIError{Status: 409, Message: "already completed"}
	}
	p.Status = constants.PreorderCompleted
	return *p, nil
}

func paidOrder() model.OrderSummary {
	return model.OrderSummary{ID: 1, PublicCode: "ORD-000001", Status: constants.OrderPaid}
}

func TestRedemptionWorkflow_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("classifies single vs multiple", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, TicketCode: "TKT-1", Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		snap, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		require.Equal(t, StateResolved, snap.State)
		require.Equal(t, model.ScanSingleTicket, snap.Result.Kind)

		api.tickets[2] = &model.Ticket{ID: 2, TicketCode: "TKT-2", Status: constants.TicketPaid}
		snap, err = wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		require.Equal(t, model.ScanMultiTicket, snap.Result.Kind)
	})

	t.Run("failed resolve clears prior matches", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		_, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)

		snap, err := wf.Resolve(context.Background(), ModeTicket, "BAD")
		require.Error(t, err)
		require.Equal(t, StateError, snap.State)
		require.Nil(t, snap.Result, "stale matches must not survive a failed scan")
		require.NotEmpty(t, snap.ErrMsg)
	})

	t.Run("fresh scan supersedes a pending resolve", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		api.onValidate = func(code string) {
			if code == "FIRST" {
				// The operator scans again before the first answer lands.
				_, err := wf.Resolve(context.Background(), ModeTicket, "SECOND")
				require.NoError(t, err)
			}
		}

		_, err := wf.Resolve(context.Background(), ModeTicket, "FIRST")
		require.ErrorIs(t, err, ErrSuperseded)
		require.Equal(t, "SECOND", wf.Current().Code)
	})

	t.Run("warns when the session has ended", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{
			ID:     1,
			Status: constants.TicketPaid,
			Session: &model.SessionRef{
				EndTime: now.Add(-30 * time.Minute),
			},
		}
		wf := NewRedemptionWorkflow(api).WithClock(func() time.Time { return now })

		snap, err := wf.Resolve(context.Background(), ModeTicket, "TKT-1")
		require.NoError(t, err)
		require.NotEmpty(t, snap.Warnings)
		require.False(t, snap.Blocked, "session end is advisory, never a block")
	})
}

func TestRedemptionWorkflow_Mark(t *testing.T) {
	t.Parallel()

	t.Run("bulk mark then one re-resolve shows all used", func(t *testing.T) {
		// Scenario: order code matches 3 tickets, one already used.
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketUsed}
		api.tickets[2] = &model.Ticket{ID: 2, Status: constants.TicketPaid}
		api.tickets[3] = &model.Ticket{ID: 3, Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		snap, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		remaining := snap.Result.RemainingTickets()
		require.Len(t, remaining, 2, "only unredeemed tickets are offered")

		ids := []uint{remaining[0].ID, remaining[1].ID}
		snap, err = wf.MarkBulk(context.Background(), ids)
		require.NoError(t, err)
		require.Equal(t, StateResolved, snap.State)
		for _, ticket := range snap.Result.Tickets {
			require.Equal(t, constants.TicketUsed, ticket.Status)
		}
		require.Empty(t, snap.Result.RemainingTickets())
	})

	t.Run("marking an already-used ticket is not a user-facing error", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		_, err := wf.Resolve(context.Background(), ModeTicket, "TKT-1")
		require.NoError(t, err)

		snap, err := wf.MarkSingle(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, constants.TicketUsed, snap.Result.Tickets[0].Status)

		// Second press of the same button: server rejects the redundant
		// mark, the workflow swallows it and re-resolves.
		snap, err = wf.MarkSingle(context.Background(), 1)
		require.NoError(t, err)
		require.Empty(t, snap.ErrMsg)
		require.Equal(t, constants.TicketUsed, snap.Result.Tickets[0].Status)
	})

	t.Run("partial bulk failure still reconciles exactly once", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketPaid}
		api.tickets[2] = &model.Ticket{ID: 2, Status: constants.TicketPaid}
		api.tickets[3] = &model.Ticket{ID: 3, Status: constants.TicketPaid}
		api.markErr[2] = &fulfillment.APIError{Status: 500, Message: "shard down"}
		wf := NewRedemptionWorkflow(api)

		_, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		require.Equal(t, 1, api.resolveCalls)

		snap, err := wf.MarkBulk(context.Background(), []uint{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, 2, api.resolveCalls, "one terminating re-resolve, no more")
		require.NotEmpty(t, snap.ErrMsg, "partial failure is reported")

		byID := map[uint]model.Ticket{}
		for _, ticket := range snap.Result.Tickets {
			byID[ticket.ID] = ticket
		}
		require.Equal(t, constants.TicketUsed, byID[1].Status)
		require.Equal(t, constants.TicketPaid, byID[2].Status)
		require.Equal(t, constants.TicketUsed, byID[3].Status)
	})

	t.Run("cancelled order blocks marking with an explicit reason", func(t *testing.T) {
		order := paidOrder()
		order.Status = constants.OrderCancelled
		api := newFakeRedemptionAPI(order)
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketPaid}
		wf := NewRedemptionWorkflow(api)

		snap, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		require.True(t, snap.Blocked)
		require.NotEmpty(t, snap.BlockReason, "staff must be told why, not just see a dead button")

		snap, err = wf.MarkSingle(context.Background(), 1)
		require.ErrorIs(t, err, ErrOrderNotRedeemable)
	})

	t.Run("mark without a resolution is rejected", func(t *testing.T) {
		wf := NewRedemptionWorkflow(newFakeRedemptionAPI(paidOrder()))
		_, err := wf.MarkSingle(context.Background(), 1)
		require.ErrorIs(t, err, ErrNoResolution)
	})

	t.Run("completed preorders stay completed", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.preorders[7] = &model.ConcessionPreorder{ID: 7, ItemName: "popcorn L", Status: constants.PreorderReady}
		wf := NewRedemptionWorkflow(api)

		_, err := wf.Resolve(context.Background(), ModeConcession, "CON-7")
		require.NoError(t, err)

		snap, err := wf.MarkSingle(context.Background(), 7)
		require.NoError(t, err)
		require.Equal(t, constants.PreorderCompleted, snap.Result.Preorders[0].Status)

		snap, err = wf.MarkSingle(context.Background(), 7)
		require.NoError(t, err)
		require.Empty(t, snap.ErrMsg)
		require.Equal(t, constants.PreorderCompleted, snap.Result.Preorders[0].Status)
	})

	t.Run("events published only for marks that landed", func(t *testing.T) {
		api := newFakeRedemptionAPI(paidOrder())
		api.tickets[1] = &model.Ticket{ID: 1, Status: constants.TicketUsed}
		api.tickets[2] = &model.Ticket{ID: 2, Status: constants.TicketPaid}

		var evMu sync.Mutex
		var events []Event
		wf := NewRedemptionWorkflow(api).WithPublisher(func(ev Event) {
			evMu.Lock()
			events = append(events, ev)
			evMu.Unlock()
		})

		_, err := wf.Resolve(context.Background(), ModeTicket, "ORD-000001")
		require.NoError(t, err)
		_, err = wf.MarkBulk(context.Background(), []uint{1, 2})
		require.NoError(t, err)

		require.Len(t, events, 1, "the conflicting mark publishes nothing")
		require.Equal(t, uint(2), events[0].ItemID)
	})
}
