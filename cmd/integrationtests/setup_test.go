package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "live-auction/internal/biddingService"
	"live-auction/internal/realtime"
	"live-auction/internal/repository"
	"live-auction/internal/server"

	"github.com/gin-gonic/gin"
)

// TestStack bundles everything an integration test needs.
type TestStack struct {
	Repo   *repository.MemoryRepo
	Hub    *realtime.Hub
	Svc    *bidding.BiddingService
	Router *gin.Engine
}

// SetupTestStack wires the in-memory store, hub and router the way main does.
func SetupTestStack(t *testing.T) *TestStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	hub := realtime.NewHub(realtime.HubConfig{ExpiryTick: 50 * time.Millisecond})
	hub.Run()
	t.Cleanup(hub.Stop)

	svc := bidding.NewBiddingService(repo, hub)
	router := server.SetupRouter(svc, hub)

	return &TestStack{Repo: repo, Hub: hub, Svc: svc, Router: router}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// CreateAuctionViaAPI creates an auction over REST and returns its id.
func CreateAuctionViaAPI(t *testing.T, router *gin.Engine, title string, start, end time.Time) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/auctions", map[string]any{
		"title":      title,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	})
	if w.Code != 201 {
		t.Fatalf("failed to create auction: status %d body %v", w.Code, resp)
	}
	return resp["data"].(map[string]any)["id"].(string)
}

// AddItemViaAPI adds an item over REST and returns its id.
func AddItemViaAPI(t *testing.T, router *gin.Engine, auctionID, name string, startingPrice float64) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/auctions/"+auctionID+"/items", map[string]any{
		"name":           name,
		"description":    name + " description",
		"starting_price": startingPrice,
	})
	if w.Code != 201 {
		t.Fatalf("failed to add item: status %d body %v", w.Code, resp)
	}
	return resp["data"].(map[string]any)["item_id"].(string)
}
