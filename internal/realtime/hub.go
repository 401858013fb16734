package realtime

import (
	"sync"
	"time"

	bidding "live-auction/internal/biddingService"
	model "live-auction/internal/models"
	"live-auction/utils"
)

// Session is one live connection and the set of auctions it watches. All
// fields besides ID are owned by the Hub and mutated only under its lock.
type Session struct {
	ID     string
	send   chan OutboundEvent
	subs   map[string]struct{} // subscribed auction ids
	closed bool
}

// Out exposes the session's ordered outbound queue. The transport drains it
// in a single writer goroutine; the channel is closed when the session dies.
func (s *Session) Out() <-chan OutboundEvent {
	return s.send
}

// Hub is the connection session manager and event broadcaster. It tracks
// which sessions watch which auctions, fans accepted bids out in order, and
// evicts subscriptions when an auction's end time elapses.
//
// Hub implements bidding.BidNotifier: BidAccepted is invoked inside the
// admission engine's per-item critical section, so per-item notification
// order equals acceptance order on every session's queue.
type Hub struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	subscribers map[string]map[string]*Session // auctionID -> sessionID -> session
	watched     map[string]time.Time           // auctionID -> end time

	sendBuffer int
	tick       time.Duration
	now        func() time.Time
	done       chan struct{}
}

// HubConfig carries the tunables the Hub needs from the environment.
type HubConfig struct {
	SendBuffer int           // per-session outbound queue length
	ExpiryTick time.Duration // how often auction end times are checked
}

// NewHub creates a Hub. Call Run to start the expiry watcher.
func NewHub(cfg HubConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.ExpiryTick <= 0 {
		cfg.ExpiryTick = time.Second
	}
	return &Hub{
		sessions:    make(map[string]*Session),
		subscribers: make(map[string]map[string]*Session),
		watched:     make(map[string]time.Time),
		sendBuffer:  cfg.SendBuffer,
		tick:        cfg.ExpiryTick,
		now:         time.Now,
		done:        make(chan struct{}),
	}
}

// Run starts the auction expiry watcher until Stop is called.
func (h *Hub) Run() {
	go h.watchExpiry()
}

// Stop terminates the expiry watcher. Open sessions are unaffected.
func (h *Hub) Stop() {
	close(h.done)
}

// OpenSession registers a new live session and returns it.
func (h *Hub) OpenSession() *Session {
	s := &Session{
		ID:   utils.GenerateShortID(),
		send: make(chan OutboundEvent, h.sendBuffer),
		subs: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	utils.Info("session opened", map[string]any{"session_id": s.ID})
	return s
}

// CloseSession removes the session and all its subscriptions. Safe to call
// more than once.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeSessionLocked(sessionID)
}

func (h *Hub) closeSessionLocked(sessionID string) {
	s, ok := h.sessions[sessionID]
	if !ok || s.closed {
		return
	}
	for auctionID := range s.subs {
		if subs, ok := h.subscribers[auctionID]; ok {
			delete(subs, sessionID)
			if len(subs) == 0 {
				delete(h.subscribers, auctionID)
				delete(h.watched, auctionID)
			}
		}
	}
	s.closed = true
	close(s.send)
	delete(h.sessions, sessionID)
	utils.Info("session closed", map[string]any{"session_id": sessionID})
}

// Subscribe registers the session against an auction. Subscribing twice is a
// no-op. If the auction has already ended the session only receives the
// terminal notice and is not registered.
func (h *Hub) Subscribe(sessionID string, auction model.Auction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok || s.closed {
		return
	}

	if auction.StatusAt(h.now()) == model.StatusEnded {
		h.enqueueLocked(s, OutboundEvent{Event: EventAuctionEnded, Data: AuctionEndedPayload{AuctionID: auction.ID}})
		return
	}

	if _, already := s.subs[auction.ID]; already {
		return
	}
	s.subs[auction.ID] = struct{}{}
	if h.subscribers[auction.ID] == nil {
		h.subscribers[auction.ID] = make(map[string]*Session)
	}
	h.subscribers[auction.ID][sessionID] = s
	h.watched[auction.ID] = auction.EndTime

	utils.Info("session subscribed", map[string]any{"session_id": sessionID, "auction_id": auction.ID})
}

// Unsubscribe drops the session's subscription to an auction, if any.
func (h *Hub) Unsubscribe(sessionID, auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.subs, auctionID)
	if subs, ok := h.subscribers[auctionID]; ok {
		delete(subs, sessionID)
		if len(subs) == 0 {
			delete(h.subscribers, auctionID)
			delete(h.watched, auctionID)
		}
	}
}

// Deliver queues an event for one session only. Used for rejection replies.
func (h *Hub) Deliver(sessionID string, ev OutboundEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[sessionID]; ok && !s.closed {
		h.enqueueLocked(s, ev)
	}
}

// BidAccepted fans an accepted bid out: a direct acknowledgment to the
// submitter and a broadcast to every other subscriber of the auction.
func (h *Hub) BidAccepted(ev bidding.AcceptedBid) {
	amount, _ := ev.Amount.Float64()

	h.mu.Lock()
	defer h.mu.Unlock()

	if submitter, ok := h.sessions[ev.SessionID]; ok && !submitter.closed {
		h.enqueueLocked(submitter, OutboundEvent{
			Event: EventBidPlaced,
			Data:  BidPlacedPayload{Success: true, Amount: amount, ItemID: ev.ItemID, ItemName: ev.ItemName},
		})
	}

	broadcast := OutboundEvent{
		Event: EventNewBid,
		Data:  NewBidPayload{ItemID: ev.ItemID, Amount: amount, ItemName: ev.ItemName},
	}
	for id, s := range h.subscribers[ev.AuctionID] {
		if id == ev.SessionID {
			continue
		}
		h.enqueueLocked(s, broadcast)
	}
}

// enqueueLocked queues an event without blocking. A full queue means the
// consumer stopped draining; the session is cleaned up and delivery to the
// remaining subscribers continues.
func (h *Hub) enqueueLocked(s *Session, ev OutboundEvent) {
	select {
	case s.send <- ev:
	default:
		utils.Warn("evicting unresponsive session", map[string]any{"session_id": s.ID, "event": ev.Event})
		h.closeSessionLocked(s.ID)
	}
}

func (h *Hub) watchExpiry() {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.expireDue()
		case <-h.done:
			return
		}
	}
}

// expireDue sends the terminal notice to every session subscribed to an
// auction whose end time has passed and drops those subscriptions.
func (h *Hub) expireDue() {
	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()

	for auctionID, endTime := range h.watched {
		if now.Before(endTime) {
			continue
		}
		notice := OutboundEvent{Event: EventAuctionEnded, Data: AuctionEndedPayload{AuctionID: auctionID}}
		for sessionID, s := range h.subscribers[auctionID] {
			delete(s.subs, auctionID)
			delete(h.subscribers[auctionID], sessionID)
			h.enqueueLocked(s, notice)
		}
		delete(h.subscribers, auctionID)
		delete(h.watched, auctionID)
		utils.Info("auction expired, subscribers evicted", map[string]any{"auction_id": auctionID})
	}
}
