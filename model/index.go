package model

// DefaultPageSize is the page size used by the order feed.
const DefaultPageSize = 10

type ResponseCustom struct {
	Rows    any  `json:"rows"`
	HasMore bool `json:"hasMore"`
	Offset  int  `json:"offset"`
}

// FeedFilters identifies one filtered view of the order list. Changing any
// field is a reset trigger for the pager.
type FeedFilters struct {
	Tab      string `json:"tab" validate:"omitempty,oneof=active past"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

type OpenFeedInput struct {
	FeedFilters
}

type ArrayId struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

type TokenClaim struct {
	CustomerId uint   `json:"customerId"`
	AccountId  uint   `json:"accountId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CinemaId   *uint  `json:"cinemaId"`
}
