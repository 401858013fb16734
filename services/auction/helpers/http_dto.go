package helpers

import (
	"time"

	model "live-auction/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title     string    `json:"title" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type AddItemRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
}

type AuctionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type ItemResponse struct {
	ItemID           string  `json:"item_id"`
	AuctionID        string  `json:"auction_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	StartingPrice    float64 `json:"starting_price"`
	HighestBidAmount float64 `json:"highest_bid_amount"`
	HighestBidderID  int     `json:"highest_bidder_id,omitempty"`
}

type BidStateResponse struct {
	ItemID   string  `json:"item_id"`
	Amount   float64 `json:"amount"`
	BidderID int     `json:"bidder_id,omitempty"`
}

// ToAuctionResponse maps an auction with its computed status to the wire shape
func ToAuctionResponse(a model.Auction, status model.AuctionStatus) AuctionResponse {
	return AuctionResponse{
		ID:        a.ID,
		Title:     a.Title,
		StartTime: a.StartTime.UTC().Format(time.RFC3339),
		EndTime:   a.EndTime.UTC().Format(time.RFC3339),
		Status:    string(status),
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToItemResponse maps an item and its current bid state to the wire shape
func ToItemResponse(item model.Item, state model.BidState) ItemResponse {
	starting, _ := item.StartingPrice.Float64()
	highest, _ := state.Amount.Float64()
	return ItemResponse{
		ItemID:           item.ItemID,
		AuctionID:        item.AuctionID,
		Name:             item.Name,
		Description:      item.Description,
		StartingPrice:    starting,
		HighestBidAmount: highest,
		HighestBidderID:  state.BidderID,
	}
}
