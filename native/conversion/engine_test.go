package conversion

import (
	"context"
	"math/big"
	"testing"

	"distancia/core/events"
	"distancia/core/ledger"
	"distancia/core/types"
	"distancia/storage"
	"distancia/token"
)

type recordingPayer struct {
	payments []payment
}

type payment struct {
	account string
	amount  *big.Int
}

func (p *recordingPayer) Pay(account string, amount *big.Int) error {
	p.payments = append(p.payments, payment{account: account, amount: new(big.Int).Set(amount)})
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Store, *token.Loopback, *recordingPayer) {
	t.Helper()
	store := ledger.NewStore(storage.NewMemDB())
	if err := store.SetParams(&types.Params{
		DistanciaPrice:                     big.NewInt(2),
		MinimumAdValue:                     big.NewInt(1_000),
		PercentageAdWatchValue:             big.NewInt(100_000),
		PercentageCommissionValue:          big.NewInt(100_000),
		PercentageMilestoneCompletionValue: big.NewInt(200_000),
	}); err != nil {
		t.Fatalf("seed params: %v", err)
	}
	tokens := token.NewLoopback()
	payer := &recordingPayer{}
	return NewEngine(store, tokens, payer), store, tokens, payer
}

func burnResult(t *testing.T, tokens *token.Loopback, ok bool) token.Result {
	t.Helper()
	pending := tokens.Drain()
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending request, got %d", len(pending))
	}
	if pending[0].Op != token.OpBurn {
		t.Fatalf("expected burn request, got %s", pending[0].Op)
	}
	if ok {
		return pending[0].Succeed()
	}
	return pending[0].Fail("balance too low")
}

func TestConvertDistanciaPaysAfterConfirmedBurn(t *testing.T) {
	engine, _, tokens, payer := newTestEngine(t)
	pending, err := engine.ConvertDistancia(context.Background(), "bob.near", big.NewInt(1_200), false)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if pending.NearAmount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("expected payout 600 at regular rate, got %s", pending.NearAmount)
	}
	if len(payer.payments) != 0 {
		t.Fatalf("payout released before burn confirmation")
	}
	if err := engine.OnBurnResult(burnResult(t, tokens, true)); err != nil {
		t.Fatalf("burn result: %v", err)
	}
	if len(payer.payments) != 1 {
		t.Fatalf("expected one payout, got %d", len(payer.payments))
	}
	if payer.payments[0].account != "bob.near" || payer.payments[0].amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected payout %+v", payer.payments[0])
	}
}

func TestConvertDistanciaPreferentialRate(t *testing.T) {
	engine, _, tokens, payer := newTestEngine(t)
	pending, err := engine.ConvertDistancia(context.Background(), "bob.near", big.NewInt(1_200), true)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if pending.NearAmount.Cmp(big.NewInt(720)) != 0 {
		t.Fatalf("expected payout 720 at preferential rate, got %s", pending.NearAmount)
	}
	if err := engine.OnBurnResult(burnResult(t, tokens, true)); err != nil {
		t.Fatalf("burn result: %v", err)
	}
	if payer.payments[0].amount.Cmp(big.NewInt(720)) != 0 {
		t.Fatalf("unexpected payout %s", payer.payments[0].amount)
	}
}

func TestFailedBurnNeverPays(t *testing.T) {
	engine, store, tokens, payer := newTestEngine(t)
	recorder := &events.Recorder{}
	engine.SetEmitter(recorder)
	pending, err := engine.ConvertDistancia(context.Background(), "bob.near", big.NewInt(1_200), false)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if err := engine.OnBurnResult(burnResult(t, tokens, false)); err != nil {
		t.Fatalf("burn result: %v", err)
	}
	if len(payer.payments) != 0 {
		t.Fatalf("failed burn still paid out: %+v", payer.payments)
	}
	last := recorder.Events[len(recorder.Events)-1]
	if last.EventType() != events.TypeConversionFailed {
		t.Fatalf("expected burn failure event, got %s", last.EventType())
	}
	if _, ok, _ := store.PendingConversionByID(pending.RequestID); ok {
		t.Fatalf("failed conversion left pending record behind")
	}
}

// The payout is computed when the burn is issued, so a price change while the
// burn is in flight does not alter it.
func TestInFlightPayoutIsFixed(t *testing.T) {
	engine, store, tokens, payer := newTestEngine(t)
	if _, err := engine.ConvertDistancia(context.Background(), "bob.near", big.NewInt(1_200), false); err != nil {
		t.Fatalf("convert: %v", err)
	}
	p, err := store.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	p.DistanciaPrice = big.NewInt(100)
	if err := store.SetParams(p); err != nil {
		t.Fatalf("set params: %v", err)
	}
	if err := engine.OnBurnResult(burnResult(t, tokens, true)); err != nil {
		t.Fatalf("burn result: %v", err)
	}
	if payer.payments[0].amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("in-flight payout changed with price: %s", payer.payments[0].amount)
	}
}

func TestConvertDistanciaRejectsNonPositiveAmount(t *testing.T) {
	engine, _, tokens, _ := newTestEngine(t)
	if _, err := engine.ConvertDistancia(context.Background(), "bob.near", big.NewInt(0), false); err != ErrNonPositiveAmount {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}
	if _, err := engine.ConvertDistancia(context.Background(), "bob.near", nil, false); err != ErrNonPositiveAmount {
		t.Fatalf("expected ErrNonPositiveAmount for nil, got %v", err)
	}
	if tokens.Pending() != 0 {
		t.Fatalf("rejected conversion still issued a burn")
	}
}

func TestClearMilestone(t *testing.T) {
	engine, store, tokens, payer := newTestEngine(t)
	if _, err := store.InsertMilestone(&types.Milestone{Key: "marathon-42k", Value: big.NewInt(1_200)}); err != nil {
		t.Fatalf("seed milestone: %v", err)
	}
	pending, err := engine.ClearMilestone(context.Background(), "bob.near", "marathon-42k")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if pending.NearAmount.Cmp(big.NewInt(720)) != 0 {
		t.Fatalf("expected preferential payout 720, got %s", pending.NearAmount)
	}
	if pending.MilestoneKey != "marathon-42k" {
		t.Fatalf("pending record lost milestone key: %+v", pending)
	}
	if err := engine.OnBurnResult(burnResult(t, tokens, true)); err != nil {
		t.Fatalf("burn result: %v", err)
	}
	if len(payer.payments) != 1 || payer.payments[0].amount.Cmp(big.NewInt(720)) != 0 {
		t.Fatalf("unexpected payouts %+v", payer.payments)
	}

	// The milestone is not retired; clearing again works.
	if _, err := engine.ClearMilestone(context.Background(), "carol.near", "marathon-42k"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestClearMilestoneUnknownKey(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	if _, err := engine.ClearMilestone(context.Background(), "bob.near", "no-such-milestone"); err != ErrMilestoneNotFound {
		t.Fatalf("expected ErrMilestoneNotFound, got %v", err)
	}
}

func TestUnknownBurnResultDropped(t *testing.T) {
	engine, _, _, payer := newTestEngine(t)
	res := token.Result{RequestID: "never-issued", Op: token.OpBurn, OK: true}
	if err := engine.OnBurnResult(res); err != ErrUnknownRequest {
		t.Fatalf("expected ErrUnknownRequest, got %v", err)
	}
	if len(payer.payments) != 0 {
		t.Fatalf("unknown result paid out: %+v", payer.payments)
	}
}
