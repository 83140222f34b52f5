// Package engine owns the game state and every action that mutates it.
// All mutation goes through Store methods; readers receive copies.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/geofarm/internal/catalog"
	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/entropy"
	"github.com/talgya/geofarm/internal/model"
)

// StoreConfig sets the starting conditions of a new game.
type StoreConfig struct {
	PlayerID        string
	PlayerName      string
	StartingBalance float64
	StartLocation   model.Coordinates
	Hemisphere      model.Hemisphere
	PriceRetention  time.Duration // How long price samples are kept
	Seed            int64         // Seeds the price trend noise
}

// DefaultStoreConfig starts a player in São Paulo with R$ 50.000.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		PlayerID:        "player-1",
		PlayerName:      "Player",
		StartingBalance: 50000,
		StartLocation:   model.Coordinates{Lat: -23.5505, Lng: -46.6333},
		Hemisphere:      model.HemisphereSouth,
		PriceRetention:  7 * 24 * time.Hour,
		Seed:            1,
	}
}

// Store is the single authoritative game state.
type Store struct {
	mu sync.RWMutex

	player       model.Player
	properties   []model.Property
	vehicles     []model.Vehicle
	productions  []model.Production
	orders       []model.MarketOrder
	transactions []model.Transaction
	state        model.GameState

	prices map[string]*model.PriceHistory // product ID → history
	volume map[string]float64             // filled quantity since last sample

	cfg     StoreConfig
	catalog *catalog.Catalog
	clock   Clock
	rnd     entropy.Source
	noise   opensimplex.Noise
}

// NewStore creates a game with a fresh player at cfg's start location.
func NewStore(cfg StoreConfig, cat *catalog.Catalog, clock Clock, rnd entropy.Source) *Store {
	def := DefaultStoreConfig()
	if cfg.PlayerID == "" {
		cfg.PlayerID = def.PlayerID
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName = def.PlayerName
	}
	if cfg.Hemisphere == "" {
		cfg.Hemisphere = def.Hemisphere
	}
	if cfg.PriceRetention <= 0 {
		cfg.PriceRetention = def.PriceRetention
	}
	if clock == nil {
		clock = RealClock{}
	}
	if rnd == nil {
		rnd = entropy.NewSeeded(cfg.Seed)
	}

	now := clock.Now()
	s := &Store{
		player: model.Player{
			ID:         cfg.PlayerID,
			Name:       cfg.PlayerName,
			Level:      1,
			Balance:    cfg.StartingBalance,
			Location:   cfg.StartLocation,
			Properties: []string{},
			Vehicles:   []string{},
			Staff:      []model.StaffMember{},
		},
		state: model.GameState{
			CurrentTime: now,
			GameSpeed:   1,
			Season:      SeasonAt(now, cfg.Hemisphere),
			Hemisphere:  cfg.Hemisphere,
		},
		prices:  make(map[string]*model.PriceHistory),
		volume:  make(map[string]float64),
		cfg:     cfg,
		catalog: cat,
		clock:   clock,
		rnd:     rnd,
		noise:   opensimplex.NewNormalized(cfg.Seed),
	}
	if sc, ok := clock.(*ScaledClock); ok {
		s.state.GameSpeed = sc.Speed()
	}
	return s
}

// TickReport lists what changed during one AdvanceTime call.
type TickReport struct {
	Previous         time.Time `json:"previous"`
	Now              time.Time `json:"now"`
	ReadyProductions []string  `json:"ready_productions,omitempty"`
	ArrivedVehicles  []string  `json:"arrived_vehicles,omitempty"`
}

// Changed reports whether any entity transitioned.
func (r TickReport) Changed() bool {
	return len(r.ReadyProductions) > 0 || len(r.ArrivedVehicles) > 0
}

// AdvanceTime moves game time to the clock's now, never backward, and
// applies due transitions: growing productions past their end become ready
// and traveling vehicles past their arrival become idle at the destination.
func (s *Store) AdvanceTime() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := TickReport{Previous: s.state.CurrentTime}
	now := s.now()
	s.state.CurrentTime = now
	report.Now = now

	for i := range s.productions {
		p := &s.productions[i]
		if p.Status == model.ProductionGrowing && !now.Before(p.EndTime) {
			p.Status = model.ProductionReady
			report.ReadyProductions = append(report.ReadyProductions, p.ID)
		}
	}

	for i := range s.vehicles {
		v := &s.vehicles[i]
		if v.Status != model.VehicleTraveling || v.CurrentRoute == nil {
			continue
		}
		if !now.Before(v.CurrentRoute.EstimatedArrival) {
			v.Location = v.CurrentRoute.To
			v.Status = model.VehicleIdle
			v.CurrentRoute = nil
			report.ArrivedVehicles = append(report.ArrivedVehicles, v.ID)
		}
	}

	if report.Changed() {
		slog.Debug("time advanced",
			"now", now.Format(time.RFC3339),
			"ready", len(report.ReadyProductions),
			"arrived", len(report.ArrivedVehicles),
		)
	}
	return report
}

// now returns the clock reading clamped so game time never runs backward.
// Caller must hold mu.
func (s *Store) now() time.Time {
	t := s.clock.Now()
	if t.Before(s.state.CurrentTime) {
		return s.state.CurrentTime
	}
	return t
}

// Now returns the current game time.
func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

// SetGameSpeed changes how fast game time runs. 0 pauses. The store's
// clock must implement SpeedSetter; otherwise ErrFixedPace is returned.
func (s *Store) SetGameSpeed(speed float64) error {
	if math.IsNaN(speed) || speed < 0 || speed > MaxGameSpeed {
		return invalidf("game speed %v", speed)
	}
	ss, ok := s.clock.(SpeedSetter)
	if !ok {
		return fmt.Errorf("set game speed with %T: %w", s.clock, ErrFixedPace)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentTime = s.now()
	s.state.GameSpeed = speed
	ss.SetSpeed(speed)
	slog.Info("game speed changed", "speed", speed)
	return nil
}

// MaxGameSpeed caps SetGameSpeed.
const MaxGameSpeed = 1000

// AddTransaction appends a ledger entry, filling in a missing ID and timestamp.
func (s *Store) AddTransaction(tx model.Transaction) (model.Transaction, error) {
	if !validTxType(tx.Type) {
		return model.Transaction{}, invalidf("transaction type %q", tx.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTx(tx), nil
}

// appendTx records tx. Caller must hold mu.
func (s *Store) appendTx(tx model.Transaction) model.Transaction {
	if tx.ID == "" {
		tx.ID = model.NewID("tx")
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}
	s.transactions = append(s.transactions, tx)
	return tx
}

// credit adds amount to the balance, records a ledger entry, and awards XP.
// Caller must hold mu.
func (s *Store) credit(txType model.TransactionType, amount float64, desc, related string) model.Transaction {
	s.player.Balance += amount
	tx := s.appendTx(model.Transaction{
		Type:          txType,
		Amount:        amount,
		Description:   desc,
		RelatedEntity: related,
	})
	s.awardXP(amount)
	return tx
}

// debit subtracts amount from the balance and records a negative entry.
// The balance may go negative. Caller must hold mu.
func (s *Store) debit(txType model.TransactionType, amount float64, desc, related string) model.Transaction {
	s.player.Balance -= amount
	return s.appendTx(model.Transaction{
		Type:          txType,
		Amount:        -amount,
		Description:   desc,
		RelatedEntity: related,
	})
}

// awardXP grants experience for credited currency and re-derives the level.
// Caller must hold mu.
func (s *Store) awardXP(amount float64) {
	xp := economy.XPFromTransaction(amount)
	if xp == 0 {
		return
	}
	if s.player.XP > math.MaxUint64-xp {
		s.player.XP = math.MaxUint64
	} else {
		s.player.XP += xp
	}
	level := economy.LevelFromXP(s.player.XP)
	if level > s.player.Level {
		s.player.Level = level
		slog.Info("level up", "player", s.player.ID, "level", level, "xp", s.player.XP)
	}
}

// SetPlayer applies a partial update to the player.
func (s *Store) SetPlayer(patch model.PlayerPatch) error {
	if patch.Debt != nil && badAmount(*patch.Debt) {
		return invalidf("debt %v", *patch.Debt)
	}
	if patch.Balance != nil && (math.IsNaN(*patch.Balance) || math.IsInf(*patch.Balance, 0)) {
		return invalidf("balance %v", *patch.Balance)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.Apply(&s.player)
	return nil
}

// NetWorth is balance plus 1.2× every property's purchase price plus
// tier × 10000 × condition/100 for every vehicle, minus debt.
func (s *Store) NetWorth() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.netWorth()
}

func (s *Store) netWorth() float64 {
	worth := s.player.Balance
	for _, p := range s.properties {
		worth += p.PurchasePrice * 1.2
	}
	for _, v := range s.vehicles {
		worth += float64(v.Tier) * 10000 * v.Condition / 100
	}
	return worth - s.player.Debt
}

// Snapshot is a consistent deep copy of the whole game.
type Snapshot struct {
	Player       model.Player                  `json:"player"`
	Properties   []model.Property              `json:"properties"`
	Vehicles     []model.Vehicle               `json:"vehicles"`
	Productions  []model.Production            `json:"productions"`
	MarketOrders []model.MarketOrder           `json:"market_orders"`
	Transactions []model.Transaction           `json:"transactions"`
	GameState    model.GameState               `json:"game_state"`
	Prices       map[string]model.PriceHistory `json:"prices"`
	NetWorth     float64                       `json:"net_worth"`
}

// Snapshot copies the full state under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Player:       s.player.Clone(),
		Properties:   make([]model.Property, len(s.properties)),
		Vehicles:     make([]model.Vehicle, len(s.vehicles)),
		Productions:  slices.Clone(s.productions),
		MarketOrders: slices.Clone(s.orders),
		Transactions: slices.Clone(s.transactions),
		GameState:    s.state,
		Prices:       make(map[string]model.PriceHistory, len(s.prices)),
		NetWorth:     s.netWorth(),
	}
	for i, p := range s.properties {
		snap.Properties[i] = p.Clone()
	}
	for i, v := range s.vehicles {
		snap.Vehicles[i] = v.Clone()
	}
	for id, h := range s.prices {
		snap.Prices[id] = h.Clone()
	}
	if snap.Productions == nil {
		snap.Productions = []model.Production{}
	}
	if snap.MarketOrders == nil {
		snap.MarketOrders = []model.MarketOrder{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []model.Transaction{}
	}
	return snap
}

// Player returns a copy of the player.
func (s *Store) Player() model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.Clone()
}

// GameState returns the simulated clock state.
func (s *Store) GameState() model.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transactions returns a copy of the full ledger.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

// TransactionsSince returns entries appended after cursor and the new cursor.
// The ledger is append-only, so a cursor stays valid across calls.
func (s *Store) TransactionsSince(cursor int) ([]model.Transaction, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(s.transactions) {
		cursor = len(s.transactions)
	}
	return slices.Clone(s.transactions[cursor:]), len(s.transactions)
}

func validTxType(t model.TransactionType) bool {
	switch t {
	case model.TxPurchase, model.TxSale, model.TxTax, model.TxSalary, model.TxMaintenance, model.TxFuel:
		return true
	}
	return false
}
