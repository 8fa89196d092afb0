package token

import (
	"context"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// Loopback is an in-process Service that queues requests instead of sending
// them anywhere. Tests and dev nodes pull the queue and feed Results back to
// the engines by hand, which makes it easy to interleave other calls inside
// the suspension window.
type Loopback struct {
	mu      sync.Mutex
	pending []Request
}

// NewLoopback returns an empty loopback service.
func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) enqueue(req Request) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, req)
	return req.ID, nil
}

// Mint queues a mint request.
func (l *Loopback) Mint(_ context.Context, account string, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() < 0 {
		return "", ErrAmountRequired
	}
	return l.enqueue(Request{ID: uuid.NewString(), Op: OpMint, Account: account, Amount: new(big.Int).Set(amount)})
}

// Burn queues a burn request.
func (l *Loopback) Burn(_ context.Context, account string, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", ErrAmountRequired
	}
	return l.enqueue(Request{ID: uuid.NewString(), Op: OpBurn, Account: account, Amount: new(big.Int).Set(amount)})
}

// RequestOwner queues an owner query.
func (l *Loopback) RequestOwner(_ context.Context) (string, error) {
	return l.enqueue(Request{ID: uuid.NewString(), Op: OpOwner})
}

// BalanceOf queues a balance query.
func (l *Loopback) BalanceOf(_ context.Context, account string) (string, error) {
	return l.enqueue(Request{ID: uuid.NewString(), Op: OpBalance, Account: account})
}

// Drain removes and returns all queued requests in issue order.
func (l *Loopback) Drain() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Pending returns the number of queued requests without removing them.
func (l *Loopback) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
