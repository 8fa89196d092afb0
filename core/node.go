package core

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"distancia/core/events"
	"distancia/core/ledger"
	"distancia/core/types"
	"distancia/native/ads"
	"distancia/native/conversion"
	"distancia/native/milestones"
	"distancia/native/params"
	"distancia/native/rewards"
	"distancia/observability"
	"distancia/token"
)

// Node wires the ledger store, the native engines and the token-service
// client together and exposes the public entry points the RPC layer serves.
// It also runs the reservation sweeper that bounds pending mint state.
type Node struct {
	store      *ledger.Store
	ads        *ads.Engine
	milestones *milestones.Engine
	rewards    *rewards.Engine
	conversion *conversion.Engine
	params     *params.Engine
	tokens     token.Service
	emitter    events.Emitter
	logger     *slog.Logger

	sweepInterval time.Duration
}

// NodeOption customises node construction.
type NodeOption func(*Node)

// WithEmitter routes engine events to the supplied emitter.
func WithEmitter(emitter events.Emitter) NodeOption {
	return func(n *Node) { n.emitter = emitter }
}

// WithLogger sets the node logger.
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) { n.logger = logger }
}

// WithReservationTTL bounds how long a mint request may stay unconfirmed.
func WithReservationTTL(ttl time.Duration) NodeOption {
	return func(n *Node) { n.rewards.SetReservationTTL(ttl) }
}

// WithSweepInterval sets how often expired reservations are released.
func WithSweepInterval(interval time.Duration) NodeOption {
	return func(n *Node) {
		if interval > 0 {
			n.sweepInterval = interval
		}
	}
}

// NewNode constructs a node over the supplied store, token service and payout
// primitive.
func NewNode(store *ledger.Store, tokens token.Service, payer conversion.Payer, opts ...NodeOption) *Node {
	n := &Node{
		store:         store,
		ads:           ads.NewEngine(store),
		milestones:    milestones.NewEngine(store),
		rewards:       rewards.NewEngine(store, tokens),
		conversion:    conversion.NewEngine(store, tokens, payer),
		params:        params.NewEngine(store),
		tokens:        tokens,
		emitter:       events.NoopEmitter{},
		logger:        slog.Default(),
		sweepInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.ads.SetEmitter(n.emitter)
	n.milestones.SetEmitter(n.emitter)
	n.rewards.SetEmitter(n.emitter)
	n.conversion.SetEmitter(n.emitter)
	return n
}

// Store exposes the ledger store, mainly for bootstrap and tests.
func (n *Node) Store() *ledger.Store { return n.store }

// Params exposes the parameter engine.
func (n *Node) Params() *params.Engine { return n.params }

// Start runs the reservation sweeper until the context is cancelled.
func (n *Node) Start(ctx context.Context) {
	ticker := time.NewTicker(n.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			released, err := n.rewards.ExpireReservations(now)
			if err != nil {
				n.logger.Error("reservation sweep failed", slog.Any("error", err))
				continue
			}
			if released > 0 {
				observability.Token().RecordExpired(released)
				n.logger.Info("released expired mint reservations", slog.Int("count", released))
			}
		}
	}
}

// --- Marketplace and registry ---

// UploadAd creates a new ad funded by the caller's attached deposit.
func (n *Node) UploadAd(caller, key, metadata string, attachedValue *big.Int) (*types.Ad, error) {
	return n.ads.UploadAd(caller, key, metadata, attachedValue)
}

// GetAd looks up an ad by key.
func (n *Node) GetAd(key string) (*types.Ad, bool, error) {
	return n.ads.GetAd(key)
}

// GetAds lists all ads in insertion order.
func (n *Node) GetAds() ([]*types.Ad, error) {
	return n.ads.ListAds()
}

// CreateMilestone registers a milestone; owner only.
func (n *Node) CreateMilestone(caller, key string, value *big.Int) (*types.Milestone, error) {
	return n.milestones.CreateMilestone(caller, key, value)
}

// GetMilestones lists all milestones in insertion order.
func (n *Node) GetMilestones() ([]*types.Milestone, error) {
	return n.milestones.ListMilestones()
}

// --- Reward and conversion flows ---

// AdWatched starts a watch-and-earn flow for caller against adKey.
func (n *Node) AdWatched(ctx context.Context, caller, adKey string) (*types.Reservation, error) {
	return n.rewards.AdWatched(ctx, caller, adKey)
}

// GetAdsWatched returns the ads an account has been rewarded for.
func (n *Node) GetAdsWatched(account string) ([]*types.Ad, error) {
	return n.rewards.AdsWatched(account)
}

// ConvertDistancia starts an earn-to-spend flow.
func (n *Node) ConvertDistancia(ctx context.Context, caller string, amount *big.Int, milestoneCleared bool) (*types.PendingConversion, error) {
	return n.conversion.ConvertDistancia(ctx, caller, amount, milestoneCleared)
}

// ClearMilestone converts a milestone's value at the preferential rate.
func (n *Node) ClearMilestone(ctx context.Context, caller, key string) (*types.PendingConversion, error) {
	return n.conversion.ClearMilestone(ctx, caller, key)
}

// --- Admin setters ---

// SetDistanciaPrice replaces the reward-to-base exchange price; owner only.
func (n *Node) SetDistanciaPrice(caller string, value *big.Int) error {
	return n.params.SetDistanciaPrice(caller, value)
}

// SetMinimumAdValue replaces the minimum ad deposit; owner only.
func (n *Node) SetMinimumAdValue(caller string, value *big.Int) error {
	return n.params.SetMinimumAdValue(caller, value)
}

// SetPercentageAdWatchValue replaces the watch percentage; owner only.
func (n *Node) SetPercentageAdWatchValue(caller string, value *big.Int) error {
	return n.params.SetPercentageAdWatchValue(caller, value)
}

// SetPercentageCommissionValue replaces the commission percentage; owner only.
func (n *Node) SetPercentageCommissionValue(caller string, value *big.Int) error {
	return n.params.SetPercentageCommissionValue(caller, value)
}

// SetPercentageMilestoneCompletionValue replaces the milestone percentage;
// owner only.
func (n *Node) SetPercentageMilestoneCompletionValue(caller string, value *big.Int) error {
	return n.params.SetPercentageMilestoneCompletionValue(caller, value)
}

// GetDistanciaPrice returns the current price parameter.
func (n *Node) GetDistanciaPrice() (*big.Int, error) {
	return n.params.DistanciaPrice()
}

// --- Token-service protocol ---

// RefreshTokenContractOwner issues an asynchronous owner query; the cached
// owner updates when the callback arrives.
func (n *Node) RefreshTokenContractOwner(ctx context.Context) (string, error) {
	return n.tokens.RequestOwner(ctx)
}

// GetTokenContractOwner returns the cached external token contract owner.
func (n *Node) GetTokenContractOwner() (string, error) {
	return n.params.TokenContractOwner()
}

// HandleTokenResult routes a token-service callback to the engine that issued
// the request. It is the single entry point for the callback leg of the
// protocol.
func (n *Node) HandleTokenResult(res token.Result) error {
	switch res.Op {
	case token.OpMint:
		return n.rewards.OnMintResult(res)
	case token.OpBurn:
		return n.conversion.OnBurnResult(res)
	case token.OpOwner:
		if !res.OK {
			n.logger.Warn("token owner query failed", slog.String("requestId", res.RequestID), slog.String("error", res.Err))
			return nil
		}
		if err := n.params.ApplyTokenOwner(res.Owner); err != nil {
			return err
		}
		n.emitter.Emit(events.TokenOwnerRefreshed{Owner: res.Owner})
		return nil
	case token.OpBalance:
		// Present in the protocol but not consumed by any flow; log only.
		n.logger.Info("token balance result", slog.String("requestId", res.RequestID), slog.Bool("ok", res.OK))
		return nil
	default:
		n.logger.Warn("dropping token result with unknown op", slog.String("op", string(res.Op)))
		return nil
	}
}

// ExpireReservations releases lapsed mint reservations; exposed for hosts
// that schedule sweeps themselves.
func (n *Node) ExpireReservations(now time.Time) (int, error) {
	return n.rewards.ExpireReservations(now)
}
