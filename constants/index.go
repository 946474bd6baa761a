package constants

// Order status (as reported by the fulfillment API)
const (
	OrderPendingPayment = "PENDING_PAYMENT"
	OrderPaid           = "PAID"
	OrderCancelled      = "CANCELLED"
	OrderUsed           = "USED"
	OrderCompleted      = "COMPLETED"
	OrderRefunded       = "REFUNDED"
)

// Ticket status
const (
	TicketReserved = "RESERVED"
	TicketPaid     = "PAID"
	TicketUsed     = "USED"
)

// Concession preorder status
const (
	PreorderPending   = "PENDING"
	PreorderReady     = "READY"
	PreorderCompleted = "COMPLETED"
)

// Payment status
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

// Common response messages
const (
	ERROR_INPUT              = "Invalid input"
	DATA_INPUT_IS_NOT_NUMBER = "Input must be a number"
	NOT_STAFF                = "Staff permission required"
	UNAUTHORIZED             = "Please sign in"
	ORDER_NOT_FOUND          = "Order not found"
	CODE_NOT_FOUND           = "Code does not match any ticket or preorder"
	UPSTREAM_ERROR           = "Fulfillment service unavailable, please retry"
)
