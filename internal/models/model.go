package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers, matching the REST and socket clients.
	decimal.MarshalJSONWithoutQuotes = true
}

// AuctionStatus is derived from the auction window and the clock, never stored.
type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "scheduled"
	StatusActive    AuctionStatus = "active"
	StatusEnded     AuctionStatus = "ended"
)

// Auction is a timed container for items.
type Auction struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusAt computes the lifecycle phase of the auction at the given instant.
func (a Auction) StatusAt(now time.Time) AuctionStatus {
	switch {
	case now.Before(a.StartTime):
		return StatusScheduled
	case now.Before(a.EndTime):
		return StatusActive
	default:
		return StatusEnded
	}
}

// Item is a biddable entity belonging to exactly one auction.
type Item struct {
	ItemID        string          `json:"item_id"`
	AuctionID     string          `json:"auction_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
}

// BidState is the current highest accepted bid for an item. BidderID 0 means
// no bid has been accepted yet and Amount equals the starting price.
type BidState struct {
	Amount   decimal.Decimal `json:"amount"`
	BidderID int             `json:"bidder_id"`
}

// Bid is an accepted bid. Bids are ephemeral: the ledger keeps only the
// current BidState, not a history.
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	ItemID    string          `json:"item_id"`
	BidderID  int             `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
