package params

import (
	"math/big"
	"testing"

	"distancia/core/ledger"
	"distancia/core/types"
	"distancia/storage"
)

func newTestEngine(t *testing.T) (*Engine, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore(storage.NewMemDB())
	if err := store.SetOwner("owner.distancia"); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	if err := store.SetParams(&types.Params{
		DistanciaPrice:                     big.NewInt(2),
		MinimumAdValue:                     big.NewInt(1_000),
		PercentageAdWatchValue:             big.NewInt(100_000),
		PercentageCommissionValue:          big.NewInt(100_000),
		PercentageMilestoneCompletionValue: big.NewInt(200_000),
	}); err != nil {
		t.Fatalf("seed params: %v", err)
	}
	return NewEngine(store), store
}

func TestSettersRequireOwner(t *testing.T) {
	engine, _ := newTestEngine(t)
	if err := engine.SetDistanciaPrice("mallory.near", big.NewInt(5)); err != ErrNotAuthorized {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	price, err := engine.DistanciaPrice()
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("rejected setter still mutated price: %s", price)
	}
}

func TestSetDistanciaPrice(t *testing.T) {
	engine, _ := newTestEngine(t)
	if err := engine.SetDistanciaPrice("owner.distancia", big.NewInt(5)); err != nil {
		t.Fatalf("set: %v", err)
	}
	price, err := engine.DistanciaPrice()
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected price 5, got %s", price)
	}
}

func TestSettersRejectInvalidValues(t *testing.T) {
	engine, store := newTestEngine(t)
	if err := engine.SetDistanciaPrice("owner.distancia", big.NewInt(0)); err == nil {
		t.Fatalf("expected rejection of zero price")
	}
	if err := engine.SetPercentageAdWatchValue("owner.distancia", big.NewInt(0)); err == nil {
		t.Fatalf("expected rejection of zero watch percentage")
	}
	if err := engine.SetPercentageCommissionValue("owner.distancia", big.NewInt(types.PercentageDenominator)); err == nil {
		t.Fatalf("expected rejection of 100%% commission")
	}
	if err := engine.SetPercentageMilestoneCompletionValue("owner.distancia", big.NewInt(types.PercentageDenominator+1)); err == nil {
		t.Fatalf("expected rejection of milestone percentage above denominator")
	}
	// All rejections left the stored set untouched and valid.
	p, err := store.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("stored params invalid after rejected updates: %v", err)
	}
	if p.PercentageCommissionValue.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("rejected update leaked: %s", p.PercentageCommissionValue)
	}
}

func TestEachSetterUpdatesOnlyItsField(t *testing.T) {
	engine, store := newTestEngine(t)
	if err := engine.SetMinimumAdValue("owner.distancia", big.NewInt(2_500)); err != nil {
		t.Fatalf("set minimum: %v", err)
	}
	if err := engine.SetPercentageMilestoneCompletionValue("owner.distancia", big.NewInt(250_000)); err != nil {
		t.Fatalf("set milestone pct: %v", err)
	}
	p, err := store.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.MinimumAdValue.Cmp(big.NewInt(2_500)) != 0 {
		t.Fatalf("minimum not updated: %s", p.MinimumAdValue)
	}
	if p.PercentageMilestoneCompletionValue.Cmp(big.NewInt(250_000)) != 0 {
		t.Fatalf("milestone pct not updated: %s", p.PercentageMilestoneCompletionValue)
	}
	if p.DistanciaPrice.Cmp(big.NewInt(2)) != 0 || p.PercentageAdWatchValue.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("unrelated fields changed: %+v", p)
	}
}

func TestTokenContractOwnerCache(t *testing.T) {
	engine, _ := newTestEngine(t)
	owner, err := engine.TokenContractOwner()
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != "" {
		t.Fatalf("expected empty cache, got %q", owner)
	}
	if err := engine.ApplyTokenOwner("token.distancia"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	owner, err = engine.TokenContractOwner()
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != "token.distancia" {
		t.Fatalf("expected cached owner, got %q", owner)
	}
}
