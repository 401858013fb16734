package auctionerrors

import "errors"

// Creation-time errors, surfaced synchronously to the REST caller
var (
	ErrInvalidWindow = errors.New("auction end time must be after start time")
	ErrInvalidPrice  = errors.New("starting price must be positive")
	ErrAuctionEnded  = errors.New("auction has ended")
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrItemNotFound    = errors.New("item not found")
)

// Submission-time errors, surfaced only to the submitting session
var (
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrInvalidBidder    = errors.New("bidder id must be between 1 and 100")
	ErrBidTooLow        = errors.New("bid amount too low")
	ErrInvalidBid       = errors.New("invalid bid")
)
