package main

import (
	"fmt"
	"os"

	bidding "live-auction/internal/biddingService"
	"live-auction/internal/config"
	"live-auction/internal/realtime"
	"live-auction/internal/repository"
	"live-auction/internal/server"
	"live-auction/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)

	repo := repository.NewMemoryRepo()

	hub := realtime.NewHub(realtime.HubConfig{
		SendBuffer: cfg.WSSendBuffer,
		ExpiryTick: cfg.ExpiryTick,
	})
	hub.Run()
	defer hub.Stop()

	biddingSvc := bidding.NewBiddingService(repo, hub)

	router := server.SetupRouter(biddingSvc, hub)

	fmt.Printf("Starting auction server on %s...\n", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
