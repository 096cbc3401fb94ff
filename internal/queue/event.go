// Package queue defines message payloads exchanged over the message broker.
package queue

// LoanQueueName is the durable queue that carries loan events.
const LoanQueueName = "loan.events"

// LoanEvent is published after every committed borrow or return. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type LoanEvent struct {
	BookID        uint64 `json:"book_id"`
	BookTitle     string `json:"book_title"`
	UserID        uint64 `json:"user_id"`
	Username      string `json:"username"`
	BorrowerEmail string `json:"borrower_email"`
	Event         string `json:"event"` // borrow | return
	CopiesLeft    int64  `json:"copies_left"`
	OccurredAt    string `json:"occurred_at"` // RFC3339
}
