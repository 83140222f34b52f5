// Package model provides the game entities owned by the simulation store:
// player, properties, vehicles, productions, market orders and the ledger.
package model

import "time"

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// PropertyType classifies what a property is used for.
type PropertyType string

const (
	PropertyFarm        PropertyType = "farm"
	PropertyIndustrial  PropertyType = "industrial"
	PropertyCommercial  PropertyType = "commercial"
	PropertyFuelStation PropertyType = "fuel_station"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyFarm, PropertyIndustrial, PropertyCommercial, PropertyFuelStation:
		return true
	}
	return false
}

// BuildingType classifies a building on a property.
type BuildingType string

const (
	BuildingSilo            BuildingType = "silo"
	BuildingWarehouse       BuildingType = "warehouse"
	BuildingGarage          BuildingType = "garage"
	BuildingProcessingPlant BuildingType = "processing_plant"
)

// Slots counts build slots on a property. Used never exceeds Total.
type Slots struct {
	Total int `json:"total"`
	Used  int `json:"used"`
}

// Building is owned by exactly one property.
type Building struct {
	ID        string       `json:"id"`
	Type      BuildingType `json:"type"`
	Level     int          `json:"level"`
	Capacity  float64      `json:"capacity"`
	Condition float64      `json:"condition"` // 0–100
}

// StorageItem is a stored quantity of one product.
type StorageItem struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"` // kg
	Quality   float64 `json:"quality"`  // 0–100
}

// Storage holds goods on a property. Capacity is never below the stored total.
type Storage struct {
	Capacity float64       `json:"capacity"` // kg
	Items    []StorageItem `json:"items"`
}

// Used returns the stored quantity across all items.
func (s Storage) Used() float64 {
	total := 0.0
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// Free returns the remaining capacity.
func (s Storage) Free() float64 {
	free := s.Capacity - s.Used()
	if free < 0 {
		return 0
	}
	return free
}

// Property is a piece of land or business owned by the player.
type Property struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          PropertyType `json:"type"`
	Tier          int          `json:"tier"` // 1–5
	Coordinates   Coordinates  `json:"coordinates"`
	Biome         string       `json:"biome"` // Biome ID from the catalog
	Owner         string       `json:"owner"`
	PurchasePrice float64      `json:"purchase_price"`
	PurchaseDate  time.Time    `json:"purchase_date"`
	Hectares      float64      `json:"hectares"` // Planted area for crop production
	Slots         Slots        `json:"slots"`
	Buildings     []Building   `json:"buildings"`
	Storage       Storage      `json:"storage"`
}

// CropType identifies a crop family; biome bonuses are keyed by it.
type CropType string

const (
	CropWheat     CropType = "wheat"
	CropCorn      CropType = "corn"
	CropSoy       CropType = "soy"
	CropCoffee    CropType = "coffee"
	CropSugarcane CropType = "sugarcane"
)

// Crop is immutable reference data.
type Crop struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Type       CropType `json:"type" yaml:"type"`
	GrowthDays float64  `json:"growth_days" yaml:"growth_days"` // Game days
	BaseYield  float64  `json:"base_yield" yaml:"base_yield"`   // kg per hectare
	BasePrice  float64  `json:"base_price" yaml:"base_price"`   // Currency per kg
}

// BiomeType is a climatic band.
type BiomeType string

const (
	BiomeTropical  BiomeType = "tropical"
	BiomeTemperate BiomeType = "temperate"
	BiomeArid      BiomeType = "arid"
	BiomeCold      BiomeType = "cold"
)

// Biome is immutable reference data. A crop type missing from Bonuses
// yields with multiplier 1.0.
type Biome struct {
	ID      string               `json:"id" yaml:"id"`
	Name    string               `json:"name" yaml:"name"`
	Type    BiomeType            `json:"type" yaml:"type"`
	Color   string               `json:"color" yaml:"color"`
	Bonuses map[CropType]float64 `json:"bonuses" yaml:"bonuses"`
}

// Bonus returns the yield multiplier for a crop type.
func (b Biome) Bonus(t CropType) float64 {
	if m, ok := b.Bonuses[t]; ok {
		return m
	}
	return 1.0
}

// ProductionStatus only moves forward: growing → ready → harvested.
type ProductionStatus string

const (
	ProductionGrowing   ProductionStatus = "growing"
	ProductionReady     ProductionStatus = "ready"
	ProductionHarvested ProductionStatus = "harvested"
)

// Production is a crop cycle on a property.
type Production struct {
	ID         string           `json:"id"`
	PropertyID string           `json:"property_id"`
	CropID     string           `json:"crop_id"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	Quantity   float64          `json:"quantity"` // kg
	Status     ProductionStatus `json:"status"`
}

// VehicleType classifies a vehicle.
type VehicleType string

const (
	VehicleTruck   VehicleType = "truck"
	VehicleTractor VehicleType = "tractor"
	VehiclePlane   VehicleType = "plane"
	VehicleShip    VehicleType = "ship"
)

// Valid reports whether t is a known vehicle type.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTruck, VehicleTractor, VehiclePlane, VehicleShip:
		return true
	}
	return false
}

// VehicleStatus is the vehicle state. A route exists iff traveling.
type VehicleStatus string

const (
	VehicleIdle      VehicleStatus = "idle"
	VehicleTraveling VehicleStatus = "traveling"
	VehicleLoading   VehicleStatus = "loading"
	VehicleUnloading VehicleStatus = "unloading"
)

// Valid reports whether s is a known vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleIdle, VehicleTraveling, VehicleLoading, VehicleUnloading:
		return true
	}
	return false
}

// Route exists only while its vehicle is traveling.
type Route struct {
	ID               string      `json:"id"`
	From             Coordinates `json:"from"`
	To               Coordinates `json:"to"`
	Distance         float64     `json:"distance"` // km
	StartTime        time.Time   `json:"start_time"`
	EstimatedArrival time.Time   `json:"estimated_arrival"`
	CargoID          string      `json:"cargo_id"`
}

// Vehicle is part of the player's fleet.
type Vehicle struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            VehicleType   `json:"type"`
	Tier            int           `json:"tier"`             // 1–5
	Capacity        float64       `json:"capacity"`         // kg
	Speed           float64       `json:"speed"`            // km/h
	FuelCapacity    float64       `json:"fuel_capacity"`    // liters
	CurrentFuel     float64       `json:"current_fuel"`     // liters
	FuelConsumption float64       `json:"fuel_consumption"` // liters per km
	Condition       float64       `json:"condition"`        // 0–100
	Location        Coordinates   `json:"location"`
	Status          VehicleStatus `json:"status"`
	CurrentRoute    *Route        `json:"current_route,omitempty"`
}

// OrderType is the side of a market order.
type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

// Valid reports whether t is buy or sell.
func (t OrderType) Valid() bool {
	return t == OrderBuy || t == OrderSell
}

// OrderStatus transitions one way out of active.
type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
	OrderExpired   OrderStatus = "expired"
)

// MarketOrder is a standing intent to buy or sell a product, filled in full.
type MarketOrder struct {
	ID           string      `json:"id"`
	Type         OrderType   `json:"type"`
	ProductID    string      `json:"product_id"`
	Quantity     float64     `json:"quantity"`
	PricePerUnit float64     `json:"price_per_unit"`
	Seller       string      `json:"seller,omitempty"`
	Buyer        string      `json:"buyer,omitempty"`
	Location     Coordinates `json:"location"`
	CreatedAt    time.Time   `json:"created_at"`
	ExpiresAt    time.Time   `json:"expires_at"`
	Status       OrderStatus `json:"status"`
}

// Total returns quantity × unit price.
func (o MarketOrder) Total() float64 {
	return o.Quantity * o.PricePerUnit
}

// TransactionType categorizes a ledger entry.
type TransactionType string

const (
	TxPurchase    TransactionType = "purchase"
	TxSale        TransactionType = "sale"
	TxTax         TransactionType = "tax"
	TxSalary      TransactionType = "salary"
	TxMaintenance TransactionType = "maintenance"
	TxFuel        TransactionType = "fuel"
)

// Transaction is an immutable, append-only ledger entry.
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"` // Signed: credits positive
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
	RelatedEntity string          `json:"related_entity,omitempty"`
}

// StaffType is a staff role.
type StaffType string

const (
	StaffBroker  StaffType = "broker"
	StaffManager StaffType = "manager"
	StaffDriver  StaffType = "driver"
)

// Rarity grades a staff member.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// StaffMember is hired by the player and paid weekly.
type StaffMember struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      StaffType          `json:"type"`
	Rarity    Rarity             `json:"rarity"`
	Salary    float64            `json:"salary"` // Per game week
	Location  *Coordinates       `json:"location,omitempty"`
	Bonuses   map[string]float64 `json:"bonuses,omitempty"`
	HiredDate time.Time          `json:"hired_date"`
}

// TravelStatus describes the player's own travel.
type TravelStatus struct {
	IsMoving    bool         `json:"is_moving"`
	Destination *Coordinates `json:"destination,omitempty"`
	ArrivalTime *time.Time   `json:"arrival_time,omitempty"`
	VehicleType string       `json:"vehicle_type,omitempty"` // bus, car, plane
}

// Player is created once at game start. Balance may go negative; Debt is
// tracked separately and never reconciled against it.
type Player struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Level        int           `json:"level"`
	XP           uint64        `json:"xp"`
	Balance      float64       `json:"balance"`
	Debt         float64       `json:"debt"`
	Location     Coordinates   `json:"location"`
	TravelStatus TravelStatus  `json:"travel_status"`
	Properties   []string      `json:"properties"`
	Vehicles     []string      `json:"vehicles"`
	Staff        []StaffMember `json:"staff"`
}

// Season of the year in the game's hemisphere.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// Hemisphere decides which months map to which season.
type Hemisphere string

const (
	HemisphereNorth Hemisphere = "north"
	HemisphereSouth Hemisphere = "south"
)

// GameState holds the simulated clock. CurrentTime never decreases.
type GameState struct {
	CurrentTime time.Time  `json:"current_time"`
	GameSpeed   float64    `json:"game_speed"`
	Season      Season     `json:"season"`
	Hemisphere  Hemisphere `json:"hemisphere"`
}

// PricePoint is one market price sample.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// PriceHistory keeps rolling samples for one product and the allowed
// trading band around the 24h average.
type PriceHistory struct {
	ProductID  string       `json:"product_id"`
	Prices     []PricePoint `json:"prices"`
	Average24h float64      `json:"average_24h"`
	MinAllowed float64      `json:"min_allowed"` // average × 0.8
	MaxAllowed float64      `json:"max_allowed"` // average × 1.2
}
