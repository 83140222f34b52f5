package model

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// NewID returns a unique identifier with a readable prefix ("tx", "prod", ...).
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Clone returns a deep copy of the property.
func (p Property) Clone() Property {
	p.Buildings = slices.Clone(p.Buildings)
	p.Storage.Items = slices.Clone(p.Storage.Items)
	return p
}

// Clone returns a deep copy of the vehicle.
func (v Vehicle) Clone() Vehicle {
	if v.CurrentRoute != nil {
		r := *v.CurrentRoute
		v.CurrentRoute = &r
	}
	return v
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	p.Properties = slices.Clone(p.Properties)
	p.Vehicles = slices.Clone(p.Vehicles)
	if p.Staff != nil {
		staff := make([]StaffMember, len(p.Staff))
		for i, m := range p.Staff {
			staff[i] = m.Clone()
		}
		p.Staff = staff
	}
	p.TravelStatus = p.TravelStatus.Clone()
	return p
}

// Clone returns a copy that shares no pointers with ts.
func (ts TravelStatus) Clone() TravelStatus {
	if ts.Destination != nil {
		d := *ts.Destination
		ts.Destination = &d
	}
	if ts.ArrivalTime != nil {
		t := *ts.ArrivalTime
		ts.ArrivalTime = &t
	}
	return ts
}

// Clone returns a deep copy of the staff member.
func (m StaffMember) Clone() StaffMember {
	if m.Location != nil {
		l := *m.Location
		m.Location = &l
	}
	m.Bonuses = maps.Clone(m.Bonuses)
	return m
}

// Clone returns a deep copy of the price history.
func (h PriceHistory) Clone() PriceHistory {
	h.Prices = slices.Clone(h.Prices)
	return h
}
