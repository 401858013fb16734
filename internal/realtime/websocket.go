package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"live-auction/internal/auctionerrors"
	bidding "live-auction/internal/biddingService"
	model "live-auction/internal/models"
	"live-auction/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The front-end is served from a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BidServiceInterface is the slice of the bidding service the socket needs.
type BidServiceInterface interface {
	GetAuction(auctionID string) (model.Auction, model.AuctionStatus, error)
	PlaceBid(sub bidding.BidSubmission) (model.Bid, error)
}

// WSHandler upgrades connections and runs the per-session read loop.
type WSHandler struct {
	service BidServiceInterface
	hub     *Hub
}

func NewWSHandler(service BidServiceInterface, hub *Hub) *WSHandler {
	return &WSHandler{service: service, hub: hub}
}

// Handle serves GET /ws.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		utils.Warn("websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	sess := h.hub.OpenSession()
	go writePump(conn, sess)

	defer func() {
		h.hub.CloseSession(sess.ID)
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed message"}})
			continue
		}

		switch env.Event {
		case EventSubscribe:
			h.handleSubscribe(sess, env.Data)
		case EventUnsubscribe:
			h.handleUnsubscribe(sess, env.Data)
		case EventPlaceBid:
			h.handlePlaceBid(sess, env.Data)
		default:
			h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "unknown event: " + env.Event}})
		}
	}
}

func (h *WSHandler) handleSubscribe(sess *Session, data json.RawMessage) {
	var p SubscribePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed subscribe payload"}})
		return
	}
	if violations := checkPayload(p); violations != nil {
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventValidation, Data: ValidationErrorPayload{Errors: violations}})
		return
	}

	auction, _, err := h.service.GetAuction(p.AuctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "auction not found"}})
			return
		}
		utils.Error("subscribe: failed to load auction", map[string]any{"auction_id": p.AuctionID, "error": err.Error()})
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "internal error"}})
		return
	}

	h.hub.Subscribe(sess.ID, auction)
}

func (h *WSHandler) handleUnsubscribe(sess *Session, data json.RawMessage) {
	var p SubscribePayload
	if err := json.Unmarshal(data, &p); err != nil || p.AuctionID == "" {
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed unsubscribe payload"}})
		return
	}
	h.hub.Unsubscribe(sess.ID, p.AuctionID)
}

func (h *WSHandler) handlePlaceBid(sess *Session, data json.RawMessage) {
	var p PlaceBidPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed placeBid payload"}})
		return
	}
	if violations := checkPayload(p); violations != nil {
		h.hub.Deliver(sess.ID, OutboundEvent{Event: EventValidation, Data: ValidationErrorPayload{Errors: violations}})
		return
	}

	_, err := h.service.PlaceBid(bidding.BidSubmission{
		SessionID: sess.ID,
		AuctionID: p.AuctionID,
		ItemID:    p.ItemID,
		BidderID:  p.UserID,
		Amount:    decimal.NewFromFloat(p.Amount),
	})
	if err == nil {
		// The hub already queued bidPlaced to this session and newBid to the
		// other subscribers from inside the admission critical section.
		return
	}

	var rej *bidding.BidRejection
	if errors.As(err, &rej) {
		h.hub.Deliver(sess.ID, OutboundEvent{
			Event: EventValidation,
			Data:  ValidationErrorPayload{Errors: []FieldViolation{rejectionViolation(rej)}},
		})
		return
	}

	utils.Error("placeBid: submission failed", map[string]any{
		"session_id": sess.ID,
		"item_id":    p.ItemID,
		"error":      err.Error(),
	})
	h.hub.Deliver(sess.ID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "internal error"}})
}

// writePump drains the session queue onto the connection and keeps the
// connection alive with pings. It owns all writes to conn.
func writePump(conn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sess.Out():
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
