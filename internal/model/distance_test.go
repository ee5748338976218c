package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles_Identity(t *testing.T) {
	p := Coordinates{Lat: 30.2672, Lng: -97.7431}
	assert.Zero(t, DistanceMiles(p, p))
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinates
	}{
		{"austin-dallas", Coordinates{30.2672, -97.7431}, Coordinates{32.7767, -96.7970}},
		{"nyc-la", Coordinates{40.7128, -74.0060}, Coordinates{34.0522, -118.2437}},
		{"near-antimeridian", Coordinates{10, 179.9}, Coordinates{10, -179.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, DistanceMiles(tt.a, tt.b), DistanceMiles(tt.b, tt.a), 1e-9)
		})
	}
}

func TestDistanceMiles_KnownDistance(t *testing.T) {
	austin := Coordinates{30.2672, -97.7431}
	dallas := Coordinates{32.7767, -96.7970}
	// Known great-circle distance is roughly 182 miles.
	d := DistanceMiles(austin, dallas)
	assert.InDelta(t, 182, d, 3)
}

func TestCompetitionSnapshot_Counts(t *testing.T) {
	snap := CompetitionSnapshot{Competitors: []CompetitorRecord{
		{Name: "Spin City", DistanceMiles: 0.4, Rating: 4.5},
		{Name: "Suds & Duds", DistanceMiles: 0.9, Rating: 3.2},
		{Name: "Wash World", DistanceMiles: 1.8, Rating: 4.1},
	}}

	assert.Equal(t, 2, snap.WithinMiles(1.0))
	assert.Equal(t, 3, snap.WithinMiles(2.0))
	assert.Equal(t, 2, snap.RatedAtLeast(4.0))
}

func TestEquipmentPlan_MachineCount(t *testing.T) {
	plan := EquipmentPlan{Machines: []MachineLine{
		{Type: "washer_20lb", Count: 8},
		{Type: "dryer_30lb", Count: 10},
	}}
	assert.Equal(t, 18, plan.MachineCount())
}

func TestLocationAnalysis_Estimated(t *testing.T) {
	a := &LocationAnalysis{
		Demographics: DemographicsSnapshot{DataSource: DataSourceAPI},
		Competition:  CompetitionSnapshot{DataSource: DataSourceAPI},
		RealEstate:   RealEstateSnapshot{DataSource: DataSourceAPI},
		Traffic:      TrafficSnapshot{DataSource: DataSourceAPI},
	}
	assert.False(t, a.Estimated())

	a.RealEstate.DataSource = DataSourceEstimated
	assert.True(t, a.Estimated())
}
