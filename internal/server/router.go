package server

import (
	bidding "live-auction/internal/biddingService"
	"live-auction/internal/realtime"
	handler "live-auction/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes: the REST surface the front-end's
// forms and tables consume, plus the websocket endpoint carrying live bids.
func SetupRouter(biddingService *bidding.BiddingService, hub *realtime.Hub) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(biddingService)
	wsHandler := realtime.NewWSHandler(biddingService, hub)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/items", auctionHandler.AddItemHandler)
		auctions.GET("/:auction_id/items", auctionHandler.ListItemsHandler)
	}

	items := router.Group("/items")
	{
		items.GET("/:item_id/highest", auctionHandler.GetHighestBidHandler)
	}

	router.GET("/ws", wsHandler.Handle)

	return router
}
