package services

import (
	"errors"
	"net/http"
)

// BetError is a ledger rule violation with a stable numeric code.
type BetError struct {
	Code    int
	Name    string
	Message string
	status  int
}

func (e *BetError) Error() string {
	return e.Message
}

// HTTPStatus maps the error to the response status handlers should use.
func (e *BetError) HTTPStatus() int {
	return e.status
}

func newBetError(code int, name, message string, status int) *BetError {
	return &BetError{Code: code, Name: name, Message: message, status: status}
}

var (
	ErrInvalidRefereeType  = newBetError(6000, "InvalidRefereeType", "Invalid referee type.", http.StatusBadRequest)
	ErrInvalidOdds         = newBetError(6001, "InvalidOdds", "Invalid odds. Both values must be greater than 0.", http.StatusBadRequest)
	ErrInvalidExpiration   = newBetError(6002, "InvalidExpiration", "Invalid expiration time. Must be in the future.", http.StatusBadRequest)
	ErrUnauthorized        = newBetError(6003, "Unauthorized", "Unauthorized action.", http.StatusForbidden)
	ErrInvalidBetStatus    = newBetError(6004, "InvalidBetStatus", "Invalid bet status for this operation.", http.StatusConflict)
	ErrBetExpired          = newBetError(6005, "BetExpired", "Bet has expired.", http.StatusConflict)
	ErrBetAlreadyAccepted  = newBetError(6006, "BetAlreadyAccepted", "Bet has already been accepted.", http.StatusConflict)
	ErrCannotAcceptOwnBet  = newBetError(6007, "CannotAcceptOwnBet", "Cannot accept your own bet.", http.StatusForbidden)
	ErrInvalidBetCreator   = newBetError(6008, "InvalidBetCreator", "Invalid bet creator.", http.StatusBadRequest)
	ErrBetNotAccepted      = newBetError(6009, "BetNotAccepted", "Bet has not been accepted yet.", http.StatusConflict)
	ErrArithmeticOverflow  = newBetError(6010, "ArithmeticOverflow", "Arithmetic overflow occurred.", http.StatusUnprocessableEntity)
	ErrInvalidProfileOwner = newBetError(6011, "InvalidProfileOwner", "Invalid profile owner.", http.StatusForbidden)
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrProfileExists     = errors.New("profile already exists")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrBetNotFound       = errors.New("bet not found")
	ErrFriendExists      = errors.New("friend relation already exists")
	ErrFriendNotFound    = errors.New("friend relation not found")
)

// AsBetError unwraps err to a ledger rule violation, if it is one.
func AsBetError(err error) (*BetError, bool) {
	var betErr *BetError
	if errors.As(err, &betErr) {
		return betErr, true
	}
	return nil, false
}
