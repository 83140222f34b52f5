package model

import (
	"slices"
	"time"
)

// PropertyPatch lists the property fields a partial update may change.
// Nil fields are left untouched.
type PropertyPatch struct {
	Name          *string       `json:"name,omitempty"`
	Type          *PropertyType `json:"type,omitempty"`
	Tier          *int          `json:"tier,omitempty"`
	Coordinates   *Coordinates  `json:"coordinates,omitempty"`
	Biome         *string       `json:"biome,omitempty"`
	Owner         *string       `json:"owner,omitempty"`
	PurchasePrice *float64      `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time    `json:"purchase_date,omitempty"`
	Hectares      *float64      `json:"hectares,omitempty"`
	Slots         *Slots        `json:"slots,omitempty"`
	Buildings     *[]Building   `json:"buildings,omitempty"`
	Storage       *Storage      `json:"storage,omitempty"`
}

// Apply merges the patch into p.
func (pp PropertyPatch) Apply(p *Property) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Type != nil {
		p.Type = *pp.Type
	}
	if pp.Tier != nil {
		p.Tier = *pp.Tier
	}
	if pp.Coordinates != nil {
		p.Coordinates = *pp.Coordinates
	}
	if pp.Biome != nil {
		p.Biome = *pp.Biome
	}
	if pp.Owner != nil {
		p.Owner = *pp.Owner
	}
	if pp.PurchasePrice != nil {
		p.PurchasePrice = *pp.PurchasePrice
	}
	if pp.PurchaseDate != nil {
		p.PurchaseDate = *pp.PurchaseDate
	}
	if pp.Hectares != nil {
		p.Hectares = *pp.Hectares
	}
	if pp.Slots != nil {
		p.Slots = *pp.Slots
	}
	if pp.Buildings != nil {
		p.Buildings = slices.Clone(*pp.Buildings)
	}
	if pp.Storage != nil {
		p.Storage = Storage{
			Capacity: pp.Storage.Capacity,
			Items:    slices.Clone(pp.Storage.Items),
		}
	}
}

// VehiclePatch lists the vehicle fields a partial update may change.
// Setting Status to anything but traveling drops the current route.
type VehiclePatch struct {
	Name            *string        `json:"name,omitempty"`
	Tier            *int           `json:"tier,omitempty"`
	Capacity        *float64       `json:"capacity,omitempty"`
	Speed           *float64       `json:"speed,omitempty"`
	FuelCapacity    *float64       `json:"fuel_capacity,omitempty"`
	CurrentFuel     *float64       `json:"current_fuel,omitempty"`
	FuelConsumption *float64       `json:"fuel_consumption,omitempty"`
	Condition       *float64       `json:"condition,omitempty"`
	Location        *Coordinates   `json:"location,omitempty"`
	Status          *VehicleStatus `json:"status,omitempty"`
	CurrentRoute    *Route         `json:"current_route,omitempty"`
}

// Apply merges the patch into v.
func (vp VehiclePatch) Apply(v *Vehicle) {
	if vp.Name != nil {
		v.Name = *vp.Name
	}
	if vp.Tier != nil {
		v.Tier = *vp.Tier
	}
	if vp.Capacity != nil {
		v.Capacity = *vp.Capacity
	}
	if vp.Speed != nil {
		v.Speed = *vp.Speed
	}
	if vp.FuelCapacity != nil {
		v.FuelCapacity = *vp.FuelCapacity
	}
	if vp.CurrentFuel != nil {
		v.CurrentFuel = *vp.CurrentFuel
	}
	if vp.FuelConsumption != nil {
		v.FuelConsumption = *vp.FuelConsumption
	}
	if vp.Condition != nil {
		v.Condition = *vp.Condition
	}
	if vp.Location != nil {
		v.Location = *vp.Location
	}
	if vp.CurrentRoute != nil {
		r := *vp.CurrentRoute
		v.CurrentRoute = &r
	}
	if vp.Status != nil {
		v.Status = *vp.Status
		if v.Status != VehicleTraveling {
			v.CurrentRoute = nil
		}
	}
}

// PlayerPatch lists the player fields a partial update may change.
// Property and vehicle back-references are owned by the store.
type PlayerPatch struct {
	Name         *string       `json:"name,omitempty"`
	Debt         *float64      `json:"debt,omitempty"`
	Balance      *float64      `json:"balance,omitempty"`
	Location     *Coordinates  `json:"location,omitempty"`
	TravelStatus *TravelStatus `json:"travel_status,omitempty"`
}

// Apply merges the patch into p.
func (pp PlayerPatch) Apply(p *Player) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Debt != nil {
		p.Debt = *pp.Debt
	}
	if pp.Balance != nil {
		p.Balance = *pp.Balance
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.TravelStatus != nil {
		p.TravelStatus = pp.TravelStatus.Clone()
	}
}
