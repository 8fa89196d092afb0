package token

import (
	"context"
	"math/big"
	"testing"
)

func TestLoopbackQueuesInOrder(t *testing.T) {
	svc := NewLoopback()
	mintID, err := svc.Mint(context.Background(), "bob.near", big.NewInt(1_500))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	burnID, err := svc.Burn(context.Background(), "bob.near", big.NewInt(1_200))
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if mintID == burnID {
		t.Fatalf("request ids collide: %s", mintID)
	}
	if svc.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", svc.Pending())
	}
	reqs := svc.Drain()
	if len(reqs) != 2 || reqs[0].Op != OpMint || reqs[1].Op != OpBurn {
		t.Fatalf("unexpected queue %+v", reqs)
	}
	if reqs[0].ID != mintID || reqs[1].ID != burnID {
		t.Fatalf("ids out of order: %+v", reqs)
	}
	if svc.Pending() != 0 {
		t.Fatalf("drain left %d pending", svc.Pending())
	}
}

func TestLoopbackRequiresAmount(t *testing.T) {
	svc := NewLoopback()
	if _, err := svc.Mint(context.Background(), "bob.near", nil); err != ErrAmountRequired {
		t.Fatalf("expected ErrAmountRequired, got %v", err)
	}
	if _, err := svc.Burn(context.Background(), "bob.near", big.NewInt(0)); err != ErrAmountRequired {
		t.Fatalf("expected ErrAmountRequired for zero burn, got %v", err)
	}
}

func TestRequestResultPairing(t *testing.T) {
	req := Request{ID: "req-1", Op: OpMint, Account: "bob.near", Amount: big.NewInt(10)}
	ok := req.Succeed()
	if ok.RequestID != "req-1" || ok.Op != OpMint || !ok.OK || ok.Err != "" {
		t.Fatalf("unexpected success result %+v", ok)
	}
	fail := req.Fail("out of funds")
	if fail.OK || fail.Err != "out of funds" || fail.RequestID != "req-1" {
		t.Fatalf("unexpected failure result %+v", fail)
	}
}

func TestLoopbackQueries(t *testing.T) {
	svc := NewLoopback()
	if _, err := svc.RequestOwner(context.Background()); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := svc.BalanceOf(context.Background(), "bob.near"); err != nil {
		t.Fatalf("balance: %v", err)
	}
	reqs := svc.Drain()
	if len(reqs) != 2 || reqs[0].Op != OpOwner || reqs[1].Op != OpBalance {
		t.Fatalf("unexpected queue %+v", reqs)
	}
}
