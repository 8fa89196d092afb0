package ledger

import (
	"errors"
	"math/big"
	"testing"

	"distancia/core/types"
	"distancia/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemDB())
}

func TestInsertAdAssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	first, err := store.InsertAd(&types.Ad{Key: "a", Owner: "alice", Value: big.NewInt(1), WatchValue: big.NewInt(1), WatchersAllowed: 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := store.InsertAd(&types.Ad{Key: "b", Owner: "alice", Value: big.NewInt(1), WatchValue: big.NewInt(1), WatchersAllowed: 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}
	ads, err := store.ListAds()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ads) != 2 || ads[0].Key != "a" || ads[1].Key != "b" {
		t.Fatalf("unexpected listing: %+v", ads)
	}
}

func TestInsertAdRejectsDuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ad := &types.Ad{Key: "dup", Owner: "alice", Value: big.NewInt(1), WatchValue: big.NewInt(1), WatchersAllowed: 1}
	if _, err := store.InsertAd(ad); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.InsertAd(ad.Clone()); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAdLookupsAgree(t *testing.T) {
	store := newTestStore(t)
	id, err := store.InsertAd(&types.Ad{Key: "run", Owner: "alice", Metadata: "m", Value: big.NewInt(10), WatchValue: big.NewInt(2), WatchersAllowed: 5})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	byID, ok, err := store.AdByID(id)
	if err != nil || !ok {
		t.Fatalf("by id: ok=%v err=%v", ok, err)
	}
	byKey, ok, err := store.AdByKey("run")
	if err != nil || !ok {
		t.Fatalf("by key: ok=%v err=%v", ok, err)
	}
	if byID.ID != byKey.ID || byID.Key != byKey.Key || byID.WatchedCount != byKey.WatchedCount {
		t.Fatalf("index views diverge: %+v vs %+v", byID, byKey)
	}

	// Updates through one index are visible through the other.
	byID.WatchedCount = 3
	if err := store.UpdateAd(byID); err != nil {
		t.Fatalf("update: %v", err)
	}
	byKey, _, err = store.AdByKey("run")
	if err != nil {
		t.Fatalf("by key: %v", err)
	}
	if byKey.WatchedCount != 3 {
		t.Fatalf("expected watched count 3 via key lookup, got %d", byKey.WatchedCount)
	}
}

func TestUpdateAdKeyImmutable(t *testing.T) {
	store := newTestStore(t)
	id, err := store.InsertAd(&types.Ad{Key: "fixed", Owner: "alice", Value: big.NewInt(1), WatchValue: big.NewInt(1), WatchersAllowed: 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	ad, _, err := store.AdByID(id)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	ad.Key = "changed"
	if err := store.UpdateAd(ad); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestStoredAdIsolatedFromCaller(t *testing.T) {
	store := newTestStore(t)
	ad := &types.Ad{Key: "iso", Owner: "alice", Value: big.NewInt(10), WatchValue: big.NewInt(2), WatchersAllowed: 5}
	if _, err := store.InsertAd(ad); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ad.WatchValue.SetInt64(999)
	stored, _, err := store.AdByKey("iso")
	if err != nil {
		t.Fatalf("by key: %v", err)
	}
	if stored.WatchValue.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("caller mutation leaked into store: %s", stored.WatchValue)
	}
}

func TestMilestoneRoundTrip(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.InsertMilestone(&types.Milestone{Key: "marathon", Value: big.NewInt(500)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.InsertMilestone(&types.Milestone{Key: "marathon", Value: big.NewInt(1)}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	m, ok, err := store.MilestoneByKey("marathon")
	if err != nil || !ok {
		t.Fatalf("by key: ok=%v err=%v", ok, err)
	}
	if m.Value.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("unexpected value %s", m.Value)
	}
	list, err := store.ListMilestones()
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d entries)", err, len(list))
	}
}

func TestWatchListAppends(t *testing.T) {
	store := newTestStore(t)
	if err := store.AppendWatch("bob", 1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendWatch("bob", 4); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendWatch("bob", 1); err != nil {
		t.Fatalf("append: %v", err)
	}
	ids, err := store.WatchList("bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 4 || ids[2] != 1 {
		t.Fatalf("unexpected watch list %v", ids)
	}
	empty, err := store.WatchList("nobody")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %v", empty)
	}
}

func TestReservationLifecycle(t *testing.T) {
	store := newTestStore(t)
	r := &types.Reservation{RequestID: "req-1", AdID: 7, Account: "bob", Amount: big.NewInt(100), CreatedAt: 10, ExpiresAt: 20}
	if err := store.PutReservation(r); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.ReservationByID("req-1")
	if err != nil || !ok {
		t.Fatalf("by id: ok=%v err=%v", ok, err)
	}
	if got.AdID != 7 || got.Account != "bob" {
		t.Fatalf("unexpected reservation %+v", got)
	}
	all, err := store.Reservations()
	if err != nil || len(all) != 1 {
		t.Fatalf("list: %v (%d entries)", err, len(all))
	}
	if err := store.DeleteReservation("req-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.ReservationByID("req-1"); ok {
		t.Fatalf("reservation survived deletion")
	}
	all, err = store.Reservations()
	if err != nil || len(all) != 0 {
		t.Fatalf("index retained deleted reservation: %v (%d entries)", err, len(all))
	}
}

func TestPendingConversionLifecycle(t *testing.T) {
	store := newTestStore(t)
	c := &types.PendingConversion{RequestID: "burn-1", Account: "bob", DistanciaAmount: big.NewInt(1200), NearAmount: big.NewInt(600)}
	if err := store.PutPendingConversion(c); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.PendingConversionByID("burn-1")
	if err != nil || !ok {
		t.Fatalf("by id: ok=%v err=%v", ok, err)
	}
	if got.NearAmount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected payout %s", got.NearAmount)
	}
	if err := store.DeletePendingConversion("burn-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.PendingConversionByID("burn-1"); ok {
		t.Fatalf("pending conversion survived deletion")
	}
}

func TestParamsAndOwnerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Params(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before seeding, got %v", err)
	}
	p := &types.Params{
		DistanciaPrice:                     big.NewInt(2),
		MinimumAdValue:                     big.NewInt(1000),
		PercentageAdWatchValue:             big.NewInt(100_000),
		PercentageCommissionValue:          big.NewInt(100_000),
		PercentageMilestoneCompletionValue: big.NewInt(200_000),
	}
	if err := store.SetParams(p); err != nil {
		t.Fatalf("set params: %v", err)
	}
	got, err := store.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if got.DistanciaPrice.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("unexpected price %s", got.DistanciaPrice)
	}

	if _, err := store.Owner(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset owner, got %v", err)
	}
	if err := store.SetOwner("owner.distancia"); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	owner, err := store.Owner()
	if err != nil || owner != "owner.distancia" {
		t.Fatalf("owner round trip: %q err=%v", owner, err)
	}

	if err := store.SetTokenContractOwner("token.distancia"); err != nil {
		t.Fatalf("set token owner: %v", err)
	}
	tokenOwner, err := store.TokenContractOwner()
	if err != nil || tokenOwner != "token.distancia" {
		t.Fatalf("token owner round trip: %q err=%v", tokenOwner, err)
	}
}
