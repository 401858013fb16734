package repository

import (
	"fmt"
	"sort"
	"sync"

	"live-auction/internal/auctionerrors"
	model "live-auction/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionStore defines the auction registry and item ledger interface
type AuctionStore interface {
	CreateAuction(auction model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	AddItem(item model.Item) error
	GetItem(itemID string) (model.Item, error)
	ListItems(auctionID string) ([]model.Item, error)
	CurrentHighest(itemID string) (model.BidState, error)
	ApplyBid(itemID string, amount decimal.Decimal, bidderID int) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionStore
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction  // key: auctionID -> value: auction
	items        map[string]model.Item     // key: itemID -> value: item
	auctionItems map[string][]string       // key: auctionID -> value: itemIDs in insertion order
	bidStates    map[string]model.BidState // key: itemID -> value: current highest bid
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		items:        make(map[string]model.Item),
		auctionItems: make(map[string][]string),
		bidStates:    make(map[string]model.BidState),
	}
}

// CreateAuction registers a new auction
func (r *MemoryRepo) CreateAuction(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.ID]; ok {
		return fmt.Errorf("create auction %s: auction already exists", auction.ID)
	}
	r.auctions[auction.ID] = auction
	return nil
}

// GetAuction returns the auction with the given ID
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListAuctions returns all auctions, oldest first
func (r *MemoryRepo) ListAuctions() ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		auctions = append(auctions, a)
	}
	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].CreatedAt.Before(auctions[j].CreatedAt)
	})
	return auctions, nil
}

// AddItem adds an item to its auction and initializes its bid state to the
// starting price with no bidder
func (r *MemoryRepo) AddItem(item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[item.AuctionID]; !ok {
		return fmt.Errorf("add item to auction %s: %w", item.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.items[item.ItemID]; ok {
		return fmt.Errorf("add item %s: item already exists", item.ItemID)
	}

	r.items[item.ItemID] = item
	r.auctionItems[item.AuctionID] = append(r.auctionItems[item.AuctionID], item.ItemID)
	r.bidStates[item.ItemID] = model.BidState{Amount: item.StartingPrice, BidderID: 0}
	return nil
}

// GetItem returns the item with the given ID
func (r *MemoryRepo) GetItem(itemID string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return item, nil
}

// ListItems returns all items of an auction in insertion order
func (r *MemoryRepo) ListItems(auctionID string) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("list items for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	itemIDs := r.auctionItems[auctionID]
	items := make([]model.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, exists := r.items[id]; exists {
			items = append(items, item)
		}
	}
	return items, nil
}

// CurrentHighest returns the current highest accepted bid for an item
func (r *MemoryRepo) CurrentHighest(itemID string) (model.BidState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.bidStates[itemID]
	if !ok {
		return model.BidState{}, fmt.Errorf("current highest for item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return state, nil
}

// ApplyBid overwrites the bid state of an item. Callers are expected to have
// validated the bid under the per-item critical section; ApplyBid itself only
// guards item existence.
func (r *MemoryRepo) ApplyBid(itemID string, amount decimal.Decimal, bidderID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bidStates[itemID]; !ok {
		return fmt.Errorf("apply bid for item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	r.bidStates[itemID] = model.BidState{Amount: amount, BidderID: bidderID}
	return nil
}
