package realtime

import (
	"testing"

	"live-auction/internal/auctionerrors"
	bidding "live-auction/internal/biddingService"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Tests that violations use json property names and per-tag constraints
func TestCheckPayload_PlaceBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		payload        PlaceBidPayload
		wantProperties []string
	}{
		{
			name:    "valid",
			payload: PlaceBidPayload{AuctionID: "a1", ItemID: "i1", Amount: 10, UserID: 1},
		},
		{
			name:           "missing_auction_and_item",
			payload:        PlaceBidPayload{Amount: 10, UserID: 1},
			wantProperties: []string{"auctionId", "itemId"},
		},
		{
			name:           "user_id_zero",
			payload:        PlaceBidPayload{AuctionID: "a1", ItemID: "i1", Amount: 10},
			wantProperties: []string{"userId"},
		},
		{
			name:           "user_id_above_range",
			payload:        PlaceBidPayload{AuctionID: "a1", ItemID: "i1", Amount: 10, UserID: 150},
			wantProperties: []string{"userId"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			violations := checkPayload(tc.payload)
			if tc.wantProperties == nil {
				require.Nil(t, violations)
				return
			}

			properties := make([]string, 0, len(violations))
			for _, v := range violations {
				properties = append(properties, v.Property)
				require.NotEmpty(t, v.Constraints)
			}
			require.ElementsMatch(t, tc.wantProperties, properties)
		})
	}
}

// Tests the mapping from admission rejections to violation entries
func TestRejectionViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rejection    *bidding.BidRejection
		wantProperty string
	}{
		{name: "not_active", rejection: &bidding.BidRejection{Reason: auctionerrors.ErrAuctionNotActive}, wantProperty: "auctionId"},
		{name: "item_not_found", rejection: &bidding.BidRejection{Reason: auctionerrors.ErrItemNotFound}, wantProperty: "itemId"},
		{name: "invalid_bidder", rejection: &bidding.BidRejection{Reason: auctionerrors.ErrInvalidBidder}, wantProperty: "userId"},
		{name: "bid_too_low", rejection: &bidding.BidRejection{Reason: auctionerrors.ErrBidTooLow, CurrentHighest: decimal.NewFromInt(150)}, wantProperty: "amount"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v := rejectionViolation(tc.rejection)
			require.Equal(t, tc.wantProperty, v.Property)
			require.NotEmpty(t, v.Constraints)

			if tc.name == "bid_too_low" {
				require.Contains(t, v.Constraints["bidTooLow"], "150",
					"rejection must carry the current highest amount")
			}
		})
	}
}
