package pricing

import (
	"math/big"
	"testing"
)

func TestSplitDeposit(t *testing.T) {
	got := SplitDeposit(big.NewInt(10_000), big.NewInt(100_000))
	if got.Cmp(big.NewInt(9_000)) != 0 {
		t.Fatalf("expected 9000 after 10%% commission, got %s", got)
	}
	// Commission of zero returns the full deposit.
	got = SplitDeposit(big.NewInt(10_000), big.NewInt(0))
	if got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("expected full deposit with zero commission, got %s", got)
	}
	// Fractional result floors.
	got = SplitDeposit(big.NewInt(7), big.NewInt(100_000))
	if got.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("expected floor division, got %s", got)
	}
}

func TestPerWatchReward(t *testing.T) {
	got := PerWatchReward(big.NewInt(9_000), big.NewInt(100_000), big.NewInt(2), big.NewInt(200_000))
	if got.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("expected per-watch reward 1500, got %s", got)
	}
}

func TestWatcherCap(t *testing.T) {
	limit, err := WatcherCap(big.NewInt(100_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 10 {
		t.Fatalf("expected cap 10, got %d", limit)
	}
	// 30% floors to 3 watchers.
	limit, err = WatcherCap(big.NewInt(300_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 3 {
		t.Fatalf("expected cap 3, got %d", limit)
	}
	if _, err := WatcherCap(big.NewInt(0)); err == nil {
		t.Fatalf("expected error for zero watch percentage")
	}
}

func TestConvertRate(t *testing.T) {
	cleared, err := ConvertRate(big.NewInt(1_200), big.NewInt(2), big.NewInt(200_000), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.Cmp(big.NewInt(720)) != 0 {
		t.Fatalf("expected preferential rate 720, got %s", cleared)
	}
	regular, err := ConvertRate(big.NewInt(1_200), big.NewInt(2), big.NewInt(200_000), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regular.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("expected regular rate 600, got %s", regular)
	}
	if cleared.Cmp(regular) <= 0 {
		t.Fatalf("preferential rate %s must exceed regular rate %s", cleared, regular)
	}
	if _, err := ConvertRate(big.NewInt(1_200), big.NewInt(0), big.NewInt(200_000), false); err != ErrZeroPrice {
		t.Fatalf("expected ErrZeroPrice, got %v", err)
	}
}

// The total mintable across a full cap never exceeds the reward-currency
// value of the advertiser's post-commission deposit.
func TestRewardBudgetNeverOverruns(t *testing.T) {
	cases := []struct {
		deposit, commission, watch, price, milestone int64
	}{
		{10_000, 100_000, 100_000, 2, 200_000},
		{10_000, 100_000, 300_000, 2, 200_000},
		{99_999, 50_000, 70_000, 3, 150_000},
		{1_000, 0, 1_000_000, 1, 0},
		{7, 100_000, 333_333, 5, 999_999},
	}
	for _, tc := range cases {
		amountToPay := SplitDeposit(big.NewInt(tc.deposit), big.NewInt(tc.commission))
		watchValue := PerWatchReward(amountToPay, big.NewInt(tc.watch), big.NewInt(tc.price), big.NewInt(tc.milestone))
		limit, err := WatcherCap(big.NewInt(tc.watch))
		if err != nil {
			t.Fatalf("cap: %v", err)
		}
		total := new(big.Int).Mul(watchValue, new(big.Int).SetUint64(limit))
		budget := new(big.Int).Mul(amountToPay, big.NewInt(tc.price))
		if total.Cmp(budget) > 0 {
			t.Fatalf("deposit %d: total mint %s exceeds budget %s", tc.deposit, total, budget)
		}
	}
}
