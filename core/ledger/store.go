package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"distancia/core/types"
	"distancia/storage"
)

var (
	// ErrDuplicateKey indicates an entity already exists under the string key.
	ErrDuplicateKey = errors.New("ledger: duplicate key")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("ledger: not found")
	// ErrKeyMismatch indicates an update tried to move an entity to a
	// different string key. Keys are immutable after creation.
	ErrKeyMismatch = errors.New("ledger: entity key is immutable")
)

// Store is the single owner of all ledger state. Every entity is reachable by
// its sequential numeric id and by its unique string key; the two access paths
// can never diverge because the key index stores only the id and every write
// goes through a helper that maintains both together.
//
// All methods are safe for concurrent use. Compound read-modify-write flows
// (reserve-then-mint, burn-then-pay) are serialised by the engines on top.
type Store struct {
	mu sync.RWMutex
	db storage.Database
}

// NewStore wraps the supplied database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) getJSON(key []byte, out interface{}) (bool, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("ledger: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ledger: encode %q: %w", key, err)
	}
	return s.db.Put(key, data)
}

func (s *Store) counter(key []byte) (uint64, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("ledger: corrupt counter %q", key)
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *Store) setCounter(key []byte, value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return s.db.Put(key, buf)
}

// --- Ads ---

// InsertAd allocates the next sequential id (starting at 1), assigns it to the
// ad and writes the record plus its key index in one call. Fails with
// ErrDuplicateKey when the string key is taken.
func (s *Store) InsertAd(ad *types.Ad) (uint64, error) {
	if ad == nil {
		return 0, errors.New("ledger: nil ad")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	taken, err := s.db.Has(adKeyIndex(ad.Key))
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, fmt.Errorf("%w: ad %q", ErrDuplicateKey, ad.Key)
	}
	seq, err := s.counter(adSeqKey)
	if err != nil {
		return 0, err
	}
	id := seq + 1
	stored := ad.Clone()
	stored.ID = id
	if err := s.putJSON(adKey(id), stored); err != nil {
		return 0, err
	}
	if err := s.setCounter(adKeyIndex(stored.Key), id); err != nil {
		return 0, err
	}
	if err := s.setCounter(adSeqKey, id); err != nil {
		return 0, err
	}
	ad.ID = id
	return id, nil
}

// UpdateAd rewrites an existing ad record. The id must exist and the string
// key must be unchanged.
func (s *Store) UpdateAd(ad *types.Ad) error {
	if ad == nil {
		return errors.New("ledger: nil ad")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := new(types.Ad)
	found, err := s.getJSON(adKey(ad.ID), existing)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: ad id %d", ErrNotFound, ad.ID)
	}
	if existing.Key != ad.Key {
		return fmt.Errorf("%w: ad id %d", ErrKeyMismatch, ad.ID)
	}
	return s.putJSON(adKey(ad.ID), ad.Clone())
}

// AdByID returns the ad stored under the sequential id.
func (s *Store) AdByID(id uint64) (*types.Ad, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ad := new(types.Ad)
	found, err := s.getJSON(adKey(id), ad)
	if err != nil || !found {
		return nil, false, err
	}
	return ad, true, nil
}

// AdByKey resolves the string key through the key index and returns the same
// record AdByID would.
func (s *Store) AdByKey(key string) (*types.Ad, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, err := s.counter(adKeyIndex(key))
	if err != nil {
		return nil, false, err
	}
	if id == 0 {
		return nil, false, nil
	}
	ad := new(types.Ad)
	found, err := s.getJSON(adKey(id), ad)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, fmt.Errorf("ledger: ad index %q points at missing id %d", key, id)
	}
	return ad, true, nil
}

// ListAds returns every ad in insertion order.
func (s *Store) ListAds() ([]*types.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, err := s.counter(adSeqKey)
	if err != nil {
		return nil, err
	}
	ads := make([]*types.Ad, 0, seq)
	for id := uint64(1); id <= seq; id++ {
		ad := new(types.Ad)
		found, err := s.getJSON(adKey(id), ad)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("ledger: missing ad id %d below sequence %d", id, seq)
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

// --- Milestones ---

// InsertMilestone mirrors InsertAd for milestones.
func (s *Store) InsertMilestone(m *types.Milestone) (uint64, error) {
	if m == nil {
		return 0, errors.New("ledger: nil milestone")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	taken, err := s.db.Has(milestoneKeyIndex(m.Key))
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, fmt.Errorf("%w: milestone %q", ErrDuplicateKey, m.Key)
	}
	seq, err := s.counter(milestoneSeqKey)
	if err != nil {
		return 0, err
	}
	id := seq + 1
	stored := m.Clone()
	stored.ID = id
	if err := s.putJSON(milestoneKey(id), stored); err != nil {
		return 0, err
	}
	if err := s.setCounter(milestoneKeyIndex(stored.Key), id); err != nil {
		return 0, err
	}
	if err := s.setCounter(milestoneSeqKey, id); err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// MilestoneByKey resolves the string key through the key index.
func (s *Store) MilestoneByKey(key string) (*types.Milestone, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, err := s.counter(milestoneKeyIndex(key))
	if err != nil {
		return nil, false, err
	}
	if id == 0 {
		return nil, false, nil
	}
	m := new(types.Milestone)
	found, err := s.getJSON(milestoneKey(id), m)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, fmt.Errorf("ledger: milestone index %q points at missing id %d", key, id)
	}
	return m, true, nil
}

// MilestoneByID returns the milestone stored under the sequential id.
func (s *Store) MilestoneByID(id uint64) (*types.Milestone, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := new(types.Milestone)
	found, err := s.getJSON(milestoneKey(id), m)
	if err != nil || !found {
		return nil, false, err
	}
	return m, true, nil
}

// ListMilestones returns every milestone in insertion order.
func (s *Store) ListMilestones() ([]*types.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, err := s.counter(milestoneSeqKey)
	if err != nil {
		return nil, err
	}
	milestones := make([]*types.Milestone, 0, seq)
	for id := uint64(1); id <= seq; id++ {
		m := new(types.Milestone)
		found, err := s.getJSON(milestoneKey(id), m)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("ledger: missing milestone id %d below sequence %d", id, seq)
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

// --- Watch records ---

// AppendWatch appends an ad id to the account's watch history. The list is
// append-only; repeated ids are legitimate (an account may be rewarded for the
// same ad only once per slot, which the reward engine enforces, not the store).
func (s *Store) AppendWatch(account string, adID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []uint64
	if _, err := s.getJSON(watchKey(account), &list); err != nil {
		return err
	}
	list = append(list, adID)
	return s.putJSON(watchKey(account), list)
}

// WatchList returns the ordered ad ids the account has been rewarded for.
func (s *Store) WatchList(account string) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []uint64
	if _, err := s.getJSON(watchKey(account), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []uint64{}
	}
	return list, nil
}

// --- Reservations ---

// PutReservation stores a pending watch-slot reservation and registers it in
// the sweep index.
func (s *Store) PutReservation(r *types.Reservation) error {
	if r == nil {
		return errors.New("ledger: nil reservation")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putJSON(reservationKey(r.RequestID), r.Clone()); err != nil {
		return err
	}
	var index []string
	if _, err := s.getJSON(reservationIndexKey, &index); err != nil {
		return err
	}
	for _, id := range index {
		if id == r.RequestID {
			return nil
		}
	}
	index = append(index, r.RequestID)
	return s.putJSON(reservationIndexKey, index)
}

// ReservationByID loads a reservation by token-service request id.
func (s *Store) ReservationByID(requestID string) (*types.Reservation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := new(types.Reservation)
	found, err := s.getJSON(reservationKey(requestID), r)
	if err != nil || !found {
		return nil, false, err
	}
	return r, true, nil
}

// DeleteReservation removes a reservation and its sweep-index entry.
func (s *Store) DeleteReservation(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(reservationKey(requestID)); err != nil {
		return err
	}
	var index []string
	if _, err := s.getJSON(reservationIndexKey, &index); err != nil {
		return err
	}
	kept := index[:0]
	for _, id := range index {
		if id != requestID {
			kept = append(kept, id)
		}
	}
	return s.putJSON(reservationIndexKey, kept)
}

// Reservations returns all pending reservations, expired ones included.
func (s *Store) Reservations() ([]*types.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var index []string
	if _, err := s.getJSON(reservationIndexKey, &index); err != nil {
		return nil, err
	}
	out := make([]*types.Reservation, 0, len(index))
	for _, id := range index {
		r := new(types.Reservation)
		found, err := s.getJSON(reservationKey(id), r)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Pending conversions ---

// PutPendingConversion stores a burn awaiting confirmation.
func (s *Store) PutPendingConversion(c *types.PendingConversion) error {
	if c == nil {
		return errors.New("ledger: nil conversion")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putJSON(conversionKey(c.RequestID), c.Clone())
}

// PendingConversionByID loads a pending conversion by request id.
func (s *Store) PendingConversionByID(requestID string) (*types.PendingConversion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := new(types.PendingConversion)
	found, err := s.getJSON(conversionKey(requestID), c)
	if err != nil || !found {
		return nil, false, err
	}
	return c, true, nil
}

// DeletePendingConversion removes a settled or failed conversion.
func (s *Store) DeletePendingConversion(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(conversionKey(requestID))
}

// --- Parameters and principals ---

// Params returns the stored economic parameters.
func (s *Store) Params() (*types.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := new(types.Params)
	found, err := s.getJSON(paramsKey, p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: params not initialised", ErrNotFound)
	}
	return p, nil
}

// SetParams replaces the stored economic parameters.
func (s *Store) SetParams(p *types.Params) error {
	if p == nil {
		return errors.New("ledger: nil params")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putJSON(paramsKey, p.Clone())
}

// Owner returns the contract owner principal.
func (s *Store) Owner() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owner string
	found, err := s.getJSON(ownerKey, &owner)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: owner not initialised", ErrNotFound)
	}
	return owner, nil
}

// SetOwner stores the contract owner principal. Called once at bootstrap.
func (s *Store) SetOwner(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putJSON(ownerKey, owner)
}

// TokenContractOwner returns the cached owner of the external token contract,
// or empty when no owner callback has been applied yet.
func (s *Store) TokenContractOwner() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owner string
	if _, err := s.getJSON(tokenOwnerKey, &owner); err != nil {
		return "", err
	}
	return owner, nil
}

// SetTokenContractOwner caches the owner reported by the token service.
func (s *Store) SetTokenContractOwner(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putJSON(tokenOwnerKey, owner)
}
