package integrationtests

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"live-auction/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsClient wraps a dialed socket with typed send/receive helpers.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(event string, data any) {
	c.t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(realtime.Envelope{Event: event, Data: raw}))
}

// receive blocks for the next envelope and decodes its data into out.
func (c *wsClient) receive(wantEvent string, out any) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env realtime.Envelope
	require.NoError(c.t, c.conn.ReadJSON(&env), "waiting for %s", wantEvent)
	require.Equal(c.t, wantEvent, env.Event)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
}

func (c *wsClient) expectSilence(d time.Duration) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(d)))
	var env realtime.Envelope
	err := c.conn.ReadJSON(&env)
	if err == nil {
		c.t.Fatalf("expected no event, got %s", env.Event)
	}
}

// subscribe sends a subscribe message and waits for the hub to register it.
// Subscription has no acknowledgement, so a short settle delay is the only
// way to order it against subsequent bids.
func (c *wsClient) subscribe(auctionID string) {
	c.t.Helper()
	c.send(realtime.EventSubscribe, realtime.SubscribePayload{AuctionID: auctionID})
	time.Sleep(100 * time.Millisecond)
}

func TestLiveBiddingFlow(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	now := time.Now().UTC()
	auctionID := CreateAuctionViaAPI(t, stack.Router, "Running", now.Add(-time.Hour), now.Add(time.Hour))
	itemID := AddItemViaAPI(t, stack.Router, auctionID, "Vase", 100)

	bidder := dialWS(t, srv)
	watcher := dialWS(t, srv)
	bidder.subscribe(auctionID)
	watcher.subscribe(auctionID)

	bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
		AuctionID: auctionID,
		ItemID:    itemID,
		Amount:    150,
		UserID:    7,
	})

	var placed realtime.BidPlacedPayload
	bidder.receive(realtime.EventBidPlaced, &placed)
	require.True(t, placed.Success)
	require.Equal(t, 150.0, placed.Amount)
	require.Equal(t, itemID, placed.ItemID)
	require.Equal(t, "Vase", placed.ItemName)

	var observed realtime.NewBidPayload
	watcher.receive(realtime.EventNewBid, &observed)
	require.Equal(t, itemID, observed.ItemID)
	require.Equal(t, 150.0, observed.Amount)
	require.Equal(t, "Vase", observed.ItemName)

	// The submitter gets only the ack, never its own newBid.
	bidder.expectSilence(200 * time.Millisecond)
}

func TestLiveBiddingRejections(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	now := time.Now().UTC()
	auctionID := CreateAuctionViaAPI(t, stack.Router, "Running", now.Add(-time.Hour), now.Add(time.Hour))
	itemID := AddItemViaAPI(t, stack.Router, auctionID, "Vase", 100)

	watcher := dialWS(t, srv)
	watcher.subscribe(auctionID)

	bidder := dialWS(t, srv)
	bidder.subscribe(auctionID)

	t.Run("Bid_Not_Above_Highest", func(t *testing.T) {
		bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
			AuctionID: auctionID,
			ItemID:    itemID,
			Amount:    100,
			UserID:    7,
		})

		var payload realtime.ValidationErrorPayload
		bidder.receive(realtime.EventValidation, &payload)
		require.Len(t, payload.Errors, 1)
		require.Equal(t, "amount", payload.Errors[0].Property)
	})

	t.Run("Bidder_Out_Of_Range", func(t *testing.T) {
		bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
			AuctionID: auctionID,
			ItemID:    itemID,
			Amount:    200,
			UserID:    150,
		})

		var payload realtime.ValidationErrorPayload
		bidder.receive(realtime.EventValidation, &payload)
		require.Len(t, payload.Errors, 1)
		require.Equal(t, "userId", payload.Errors[0].Property)
	})

	t.Run("Missing_Item", func(t *testing.T) {
		bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
			AuctionID: auctionID,
			ItemID:    "missing",
			Amount:    200,
			UserID:    7,
		})

		var payload realtime.ValidationErrorPayload
		bidder.receive(realtime.EventValidation, &payload)
		require.Equal(t, "itemId", payload.Errors[0].Property)
	})

	t.Run("Unknown_Auction", func(t *testing.T) {
		bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
			AuctionID: "missing",
			ItemID:    itemID,
			Amount:    200,
			UserID:    7,
		})

		var payload realtime.ValidationErrorPayload
		bidder.receive(realtime.EventValidation, &payload)
		require.Equal(t, "auctionId", payload.Errors[0].Property)
	})

	// Rejections are private to the submitter.
	watcher.expectSilence(200 * time.Millisecond)
}

func TestLiveBiddingUnknownEvent(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	client := dialWS(t, srv)
	client.send("shout", map[string]any{"loud": true})

	var payload realtime.ErrorPayload
	client.receive(realtime.EventError, &payload)
	require.Contains(t, payload.Message, "unknown event")
}

func TestLiveBiddingAuctionExpiry(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	now := time.Now().UTC()
	auctionID := CreateAuctionViaAPI(t, stack.Router, "Closing", now.Add(-time.Hour), now.Add(300*time.Millisecond))
	itemID := AddItemViaAPI(t, stack.Router, auctionID, "Vase", 100)

	client := dialWS(t, srv)
	client.subscribe(auctionID)

	// The stack's hub ticks every 50ms, so the terminal notice arrives
	// shortly after the end time passes.
	var ended realtime.AuctionEndedPayload
	client.receive(realtime.EventAuctionEnded, &ended)
	require.Equal(t, auctionID, ended.AuctionID)

	// Bids after the notice are rejected on lifecycle grounds.
	client.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
		AuctionID: auctionID,
		ItemID:    itemID,
		Amount:    200,
		UserID:    7,
	})

	var payload realtime.ValidationErrorPayload
	client.receive(realtime.EventValidation, &payload)
	require.Equal(t, "auctionId", payload.Errors[0].Property)
}

func TestLiveBiddingSubscribeEndedAuction(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	now := time.Now().UTC()
	auctionID := CreateAuctionViaAPI(t, stack.Router, "Over", now.Add(-2*time.Hour), now.Add(-time.Hour))

	client := dialWS(t, srv)
	client.send(realtime.EventSubscribe, realtime.SubscribePayload{AuctionID: auctionID})

	// An ended auction answers with the terminal notice immediately and the
	// session is never registered as a subscriber.
	var ended realtime.AuctionEndedPayload
	client.receive(realtime.EventAuctionEnded, &ended)
	require.Equal(t, auctionID, ended.AuctionID)
}

func TestLiveBiddingUnsubscribe(t *testing.T) {
	stack := SetupTestStack(t)
	srv := httptest.NewServer(stack.Router)
	defer srv.Close()

	now := time.Now().UTC()
	auctionID := CreateAuctionViaAPI(t, stack.Router, "Running", now.Add(-time.Hour), now.Add(time.Hour))
	itemID := AddItemViaAPI(t, stack.Router, auctionID, "Vase", 100)

	watcher := dialWS(t, srv)
	watcher.subscribe(auctionID)

	watcher.send(realtime.EventUnsubscribe, realtime.SubscribePayload{AuctionID: auctionID})
	time.Sleep(100 * time.Millisecond)

	bidder := dialWS(t, srv)
	bidder.send(realtime.EventPlaceBid, realtime.PlaceBidPayload{
		AuctionID: auctionID,
		ItemID:    itemID,
		Amount:    150,
		UserID:    7,
	})

	// The submitter still gets its ack without being subscribed; the
	// unsubscribed watcher hears nothing.
	var placed realtime.BidPlacedPayload
	bidder.receive(realtime.EventBidPlaced, &placed)
	require.True(t, placed.Success)
	watcher.expectSilence(200 * time.Millisecond)
}
