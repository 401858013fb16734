package bidding

import (
	"errors"
	"fmt"
	"time"

	"live-auction/internal/auctionerrors"
	"live-auction/internal/models"
	"live-auction/internal/repository"
	"live-auction/utils"

	"github.com/shopspring/decimal"
)

// BidSubmission is one incoming bid from a live session.
type BidSubmission struct {
	SessionID string
	AuctionID string
	ItemID    string
	BidderID  int
	Amount    decimal.Decimal
}

// AcceptedBid is handed to the notifier after the ledger has been updated.
// It is published inside the per-item critical section, so notifications for
// the same item are emitted in acceptance order.
type AcceptedBid struct {
	SessionID string
	AuctionID string
	ItemID    string
	ItemName  string
	BidderID  int
	Amount    decimal.Decimal
}

// BidNotifier receives accepted bids for fan-out to subscribed sessions.
type BidNotifier interface {
	BidAccepted(event AcceptedBid)
}

// BidRejection is returned on a failed submission. It wraps one of the
// submission-time sentinels and, for ErrBidTooLow, carries the highest amount
// the bid lost against so the client can re-offer.
type BidRejection struct {
	Reason         error
	CurrentHighest decimal.Decimal
}

func (e *BidRejection) Error() string {
	if errors.Is(e.Reason, auctionerrors.ErrBidTooLow) {
		return fmt.Sprintf("%v - current highest bid is %s", e.Reason, e.CurrentHighest.String())
	}
	return e.Reason.Error()
}

func (e *BidRejection) Unwrap() error { return e.Reason }

// BiddingService validates and applies bids and owns auction/item creation
// rules. It is the single writer of the item ledger.
type BiddingService struct {
	repo     repository.AuctionStore
	notifier BidNotifier
	locks    itemLocks
	now      func() time.Time
}

// NewBiddingService creates a new BiddingService instance. notifier may be
// nil when no live sessions need fan-out (e.g. in unit tests).
func NewBiddingService(repo repository.AuctionStore, notifier BidNotifier) *BiddingService {
	return &BiddingService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateAuction validates the bidding window and registers a new auction
func (s *BiddingService) CreateAuction(title string, startTime, endTime time.Time) (models.Auction, error) {
	if title == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing title", auctionerrors.ErrInvalidBid)
	}
	if !endTime.After(startTime) {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidWindow)
	}

	auction := models.Auction{
		ID:        utils.GenerateID(),
		Title:     title,
		StartTime: startTime.UTC(),
		EndTime:   endTime.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateAuction(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return auction, nil
}

// GetAuction returns an auction together with its computed status
func (s *BiddingService) GetAuction(auctionID string) (models.Auction, models.AuctionStatus, error) {
	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, "", fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, auction.StatusAt(s.now()), nil
}

// ListAuctions returns all auctions
func (s *BiddingService) ListAuctions() ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// AddItem validates and registers a new item. Items may be added while the
// auction is scheduled or active, never once it has ended.
func (s *BiddingService) AddItem(auctionID, name, description string, startingPrice decimal.Decimal) (models.Item, error) {
	if name == "" {
		return models.Item{}, fmt.Errorf("service: %w - missing item name", auctionerrors.ErrInvalidBid)
	}
	if !startingPrice.IsPositive() {
		return models.Item{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidPrice)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	if auction.StatusAt(s.now()) == models.StatusEnded {
		return models.Item{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
	}

	item := models.Item{
		ItemID:        utils.GenerateID(),
		AuctionID:     auctionID,
		Name:          name,
		Description:   description,
		StartingPrice: startingPrice,
	}
	if err := s.repo.AddItem(item); err != nil {
		return models.Item{}, fmt.Errorf("service: failed to add item to auction %s: %w", auctionID, err)
	}
	return item, nil
}

// ListItems returns all items of an auction
func (s *BiddingService) ListItems(auctionID string) ([]models.Item, error) {
	items, err := s.repo.ListItems(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items for auction %s: %w", auctionID, err)
	}
	return items, nil
}

// CurrentHighest returns the current highest accepted bid for an item
func (s *BiddingService) CurrentHighest(itemID string) (models.BidState, error) {
	if itemID == "" {
		return models.BidState{}, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}
	state, err := s.repo.CurrentHighest(itemID)
	if err != nil {
		return models.BidState{}, fmt.Errorf("service: failed to get current highest for item %s: %w", itemID, err)
	}
	return state, nil
}

// PlaceBid validates a submission and, if it wins, updates the ledger and
// publishes the acceptance. Validation order is fixed: auction lifecycle,
// item existence, bidder identity, amount. The compare-and-apply step runs
// under a per-item lock so concurrent bids against the same item are
// serialized; bids on different items do not contend.
func (s *BiddingService) PlaceBid(sub BidSubmission) (models.Bid, error) {
	auction, err := s.repo.GetAuction(sub.AuctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			return models.Bid{}, &BidRejection{Reason: auctionerrors.ErrAuctionNotActive}
		}
		return models.Bid{}, fmt.Errorf("service: failed to get auction %s: %w", sub.AuctionID, err)
	}
	if auction.StatusAt(s.now()) != models.StatusActive {
		return models.Bid{}, &BidRejection{Reason: auctionerrors.ErrAuctionNotActive}
	}

	item, err := s.repo.GetItem(sub.ItemID)
	if err != nil || item.AuctionID != sub.AuctionID {
		return models.Bid{}, &BidRejection{Reason: auctionerrors.ErrItemNotFound}
	}

	if sub.BidderID < 1 || sub.BidderID > 100 {
		return models.Bid{}, &BidRejection{Reason: auctionerrors.ErrInvalidBidder}
	}

	unlock := s.locks.lock(sub.ItemID)
	defer unlock()

	state, err := s.repo.CurrentHighest(sub.ItemID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get current highest for item %s: %w", sub.ItemID, err)
	}
	if !sub.Amount.IsPositive() || !sub.Amount.GreaterThan(state.Amount) {
		return models.Bid{}, &BidRejection{Reason: auctionerrors.ErrBidTooLow, CurrentHighest: state.Amount}
	}

	if err := s.repo.ApplyBid(sub.ItemID, sub.Amount, sub.BidderID); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to apply bid for item %s: %w", sub.ItemID, err)
	}

	// Published before the lock is released: every subscriber's queue sees
	// accepted bids for this item in acceptance order.
	if s.notifier != nil {
		s.notifier.BidAccepted(AcceptedBid{
			SessionID: sub.SessionID,
			AuctionID: sub.AuctionID,
			ItemID:    sub.ItemID,
			ItemName:  item.Name,
			BidderID:  sub.BidderID,
			Amount:    sub.Amount,
		})
	}

	return models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: sub.AuctionID,
		ItemID:    sub.ItemID,
		BidderID:  sub.BidderID,
		Amount:    sub.Amount,
		CreatedAt: s.now().UTC(),
	}, nil
}
