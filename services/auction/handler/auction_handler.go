package handler

import (
	"fmt"
	"net/http"
	"time"

	model "live-auction/internal/models"
	"live-auction/services/auction/helpers"
	"live-auction/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	CreateAuction(title string, startTime, endTime time.Time) (model.Auction, error)
	GetAuction(auctionID string) (model.Auction, model.AuctionStatus, error)
	ListAuctions() ([]model.Auction, error)
	AddItem(auctionID, name, description string, startingPrice decimal.Decimal) (model.Item, error)
	ListItems(auctionID string) ([]model.Item, error)
	CurrentHighest(itemID string) (model.BidState, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(req.Title, req.StartTime, req.EndTime)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler": "CreateAuctionHandler",
			"title":   req.Title,
			"error":   err.Error(),
		})
		return
	}

	resp := helpers.ToAuctionResponse(auction, auction.StatusAt(time.Now()))
	utils.JSONResponse(c, http.StatusCreated, resp, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.ID,
		"title":      auction.Title,
		"end_time":   auction.EndTime,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListAuctions()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	now := time.Now()
	resp := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, helpers.ToAuctionResponse(a, a.StatusAt(now)))
	}

	utils.JSONList(c, http.StatusOK, resp, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, status, err := h.service.GetAuction(auctionID)
	if err != nil {
		httpStatus, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, httpStatus, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(auction, status), "auction retrieved successfully")
}

// AddItemHandler handles POST /auctions/:auction_id/items
func (h *AuctionHandler) AddItemHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddItemHandler", err)
		return
	}

	item, err := h.service.AddItem(auctionID, req.Name, req.Description, decimal.NewFromFloat(req.StartingPrice))
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("AddItemHandler: failed to add item", map[string]any{
			"handler":    "AddItemHandler",
			"auction_id": auctionID,
			"name":       req.Name,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.ToItemResponse(item, model.BidState{Amount: item.StartingPrice})
	utils.JSONResponse(c, http.StatusCreated, resp, "item added successfully")
	helpers.LogSuccess("AddItemHandler", "item added successfully", map[string]any{
		"item_id":    item.ItemID,
		"auction_id": auctionID,
		"name":       item.Name,
	})
}

// ListItemsHandler handles GET /auctions/:auction_id/items
func (h *AuctionHandler) ListItemsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	items, err := h.service.ListItems(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListItemsHandler: error retrieving items", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := make([]helpers.ItemResponse, 0, len(items))
	for _, item := range items {
		state, err := h.service.CurrentHighest(item.ItemID)
		if err != nil {
			state = model.BidState{Amount: item.StartingPrice}
		}
		resp = append(resp, helpers.ToItemResponse(item, state))
	}

	utils.JSONList(c, http.StatusOK, resp, "items retrieved successfully")
	helpers.LogSuccess("ListItemsHandler", "items retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetHighestBidHandler handles GET /items/:item_id/highest
func (h *AuctionHandler) GetHighestBidHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	state, err := h.service.CurrentHighest(itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetHighestBidHandler: error retrieving highest bid", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	amount, _ := state.Amount.Float64()
	resp := helpers.BidStateResponse{ItemID: itemID, Amount: amount, BidderID: state.BidderID}
	utils.JSONResponse(c, http.StatusOK, resp, "highest bid retrieved successfully")
}
