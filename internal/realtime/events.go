package realtime

import "encoding/json"

// Event names carried on the socket. Inbound names match what the front-end
// emits; outbound names match what it listens for.
const (
	EventSubscribe    = "subscribe"
	EventUnsubscribe  = "unsubscribe"
	EventPlaceBid     = "placeBid"
	EventBidPlaced    = "bidPlaced"
	EventNewBid       = "newBid"
	EventValidation   = "validationError"
	EventAuctionEnded = "auctionEnded"
	EventError        = "error"
)

// Envelope is the framing for every socket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundEvent is a fully built message queued for one session.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// SubscribePayload is the body of subscribe and unsubscribe messages.
type SubscribePayload struct {
	AuctionID string `json:"auctionId" validate:"required"`
}

// PlaceBidPayload is the body of a placeBid message. itemName is accepted for
// wire compatibility with the original client but the ledger's item name is
// authoritative. The bidder range check mirrors the front-end's own guard;
// the admission engine re-validates it regardless.
type PlaceBidPayload struct {
	AuctionID string  `json:"auctionId" validate:"required"`
	ItemID    string  `json:"itemId" validate:"required"`
	Amount    float64 `json:"amount"`
	UserID    int     `json:"userId" validate:"gte=1,lte=100"`
	ItemName  string  `json:"itemName"`
}

// BidPlacedPayload acknowledges the submitter's own accepted bid.
type BidPlacedPayload struct {
	Success  bool    `json:"success"`
	Amount   float64 `json:"amount"`
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName"`
}

// NewBidPayload notifies other subscribers of an accepted bid.
type NewBidPayload struct {
	ItemID   string  `json:"itemId"`
	Amount   float64 `json:"amount"`
	ItemName string  `json:"itemName"`
}

// FieldViolation is one entry of a validationError payload, shaped like the
// original server's validator output.
type FieldViolation struct {
	Property    string            `json:"property"`
	Constraints map[string]string `json:"constraints"`
}

// ValidationErrorPayload carries all violations of one submission.
type ValidationErrorPayload struct {
	Errors []FieldViolation `json:"errors"`
}

// AuctionEndedPayload is the terminal notice sent once per subscribed session
// when an auction's end time elapses.
type AuctionEndedPayload struct {
	AuctionID string `json:"auctionId"`
}

// ErrorPayload answers protocol-level problems (unknown event, bad JSON).
type ErrorPayload struct {
	Message string `json:"message"`
}
