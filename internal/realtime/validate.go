package realtime

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"live-auction/internal/auctionerrors"
	bidding "live-auction/internal/biddingService"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds a validator that reports json field names, so the
// emitted violations use the same property names the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkPayload validates an inbound payload and renders failures in the
// {property, constraints} shape the front-end expects.
func checkPayload(payload any) []FieldViolation {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []FieldViolation{{
			Property:    "payload",
			Constraints: map[string]string{"invalid": err.Error()},
		}}
	}

	violations := make([]FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, FieldViolation{
			Property:    fe.Field(),
			Constraints: map[string]string{fe.Tag(): constraintMessage(fe)},
		})
	}
	return violations
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must not be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s validation", fe.Field(), fe.Tag())
	}
}

// rejectionViolation turns an admission rejection into the violation entry
// sent back to the submitter.
func rejectionViolation(rej *bidding.BidRejection) FieldViolation {
	switch {
	case errors.Is(rej, auctionerrors.ErrAuctionNotActive):
		return FieldViolation{
			Property:    "auctionId",
			Constraints: map[string]string{"auctionNotActive": auctionerrors.ErrAuctionNotActive.Error()},
		}
	case errors.Is(rej, auctionerrors.ErrItemNotFound):
		return FieldViolation{
			Property:    "itemId",
			Constraints: map[string]string{"itemNotFound": auctionerrors.ErrItemNotFound.Error()},
		}
	case errors.Is(rej, auctionerrors.ErrInvalidBidder):
		return FieldViolation{
			Property:    "userId",
			Constraints: map[string]string{"invalidBidder": auctionerrors.ErrInvalidBidder.Error()},
		}
	case errors.Is(rej, auctionerrors.ErrBidTooLow):
		return FieldViolation{
			Property: "amount",
			Constraints: map[string]string{
				"bidTooLow": fmt.Sprintf("bid must be higher than the current highest bid of %s", rej.CurrentHighest.String()),
			},
		}
	default:
		return FieldViolation{
			Property:    "payload",
			Constraints: map[string]string{"rejected": rej.Error()},
		}
	}
}
