// Package token models the asynchronous protocol spoken with the external
// token service. Issuing a request never mutates ledger state; the outcome
// arrives later as a Result delivered by the host, and only the engines'
// result handlers may apply the corresponding mutation.
package token

import (
	"context"
	"errors"
	"math/big"
)

// Op identifies the token-service operation a request or result belongs to.
type Op string

const (
	OpMint    Op = "mint"
	OpBurn    Op = "burn"
	OpOwner   Op = "owner"
	OpBalance Op = "balance"
)

// ErrAmountRequired is returned when a mint or burn is issued without a
// positive amount.
var ErrAmountRequired = errors.New("token: positive amount required")

// Request is the wire form of an asynchronous token-service call.
type Request struct {
	ID      string   `json:"id"`
	Op      Op       `json:"op"`
	Account string   `json:"account,omitempty"`
	Amount  *big.Int `json:"amount,omitempty"`
}

// Result is the wire form of a token-service callback. Exactly one Result is
// delivered per Request, carrying either success or a failure reason. Owner
// and Balance are populated for the corresponding query operations.
type Result struct {
	RequestID string   `json:"requestId"`
	Op        Op       `json:"op"`
	OK        bool     `json:"ok"`
	Err       string   `json:"err,omitempty"`
	Owner     string   `json:"owner,omitempty"`
	Balance   *big.Int `json:"balance,omitempty"`
}

// Service issues asynchronous requests to the external token service. Every
// method returns as soon as the request is accepted, handing back the request
// id that the eventual Result will carry. No call blocks on the outcome.
type Service interface {
	Mint(ctx context.Context, account string, amount *big.Int) (string, error)
	Burn(ctx context.Context, account string, amount *big.Int) (string, error)
	RequestOwner(ctx context.Context) (string, error)
	BalanceOf(ctx context.Context, account string) (string, error)
}

// Succeed builds the success Result for the request.
func (r Request) Succeed() Result {
	return Result{RequestID: r.ID, Op: r.Op, OK: true}
}

// Fail builds the failure Result for the request.
func (r Request) Fail(reason string) Result {
	return Result{RequestID: r.ID, Op: r.Op, OK: false, Err: reason}
}
