package bankxlive

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInternalServer = errors.New("internal server error")
	ErrStoreClosed    = errors.New("store is closed")
	ErrServiceBusy    = errors.New("service busy, try again later")
)

type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

type ErrNotFound struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e ErrNotFound) Error() string {
	if e.Resource == "" {
		return "record not found"
	}
	return fmt.Sprintf("%s `%s` not found", e.Resource, e.ID)
}

// ErrInsufficientFunds is returned when a debit would take a balance below zero.
type ErrInsufficientFunds struct {
	AcctID    string          `json:"accountNumber"`
	Balance   decimal.Decimal `json:"balance"`
	Requested decimal.Decimal `json:"requested"`
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in account `%s`", e.AcctID)
}

type ErrInvalidTransfer struct {
	Reason string `json:"reason"`
}

func (e ErrInvalidTransfer) Error() string {
	return "invalid transfer: " + e.Reason
}

type ErrConflict struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("%s `%s` already exists", e.Resource, e.Key)
}

type ErrStatusTransition struct {
	ID   string `json:"id"`
	From Status `json:"from"`
	To   Status `json:"to"`
}

func (e ErrStatusTransition) Error() string {
	return fmt.Sprintf("transaction `%s` cannot move from %s to %s", e.ID, e.From, e.To)
}

type ErrUnauthorized struct {
	Reason string `json:"reason"`
}

func (e ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Reason
}

type ErrForbidden struct {
	Reason string `json:"reason"`
}

func (e ErrForbidden) Error() string {
	return "forbidden: " + e.Reason
}

// ErrGateway wraps failures of the payment provider. Timeout is set when the
// call hit its deadline rather than failing outright.
type ErrGateway struct {
	Op      string
	Timeout bool
	Err     error
}

func (e ErrGateway) Error() string {
	if e.Timeout {
		return fmt.Sprintf("payment gateway %s timed out", e.Op)
	}
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e ErrGateway) Unwrap() error {
	return e.Err
}
