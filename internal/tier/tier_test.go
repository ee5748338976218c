package tier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTiers_Table(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		key   string
		price float64
		depth int
	}{
		{"basic_scout", 0, 1},
		{"market_insights", 49, 2},
		{"competitor_intel", 99, 3},
		{"full_enterprise", 199, 4},
		{"real_time_monitoring", 299, 5},
	}
	for _, tt := range tests {
		tier, err := p.ByKey(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.price, tier.Price, tt.key)
		assert.Equal(t, tt.depth, tier.DepthLevel, tt.key)
	}
}

func TestValidateDepth(t *testing.T) {
	p := NewPolicy()

	for d := MinDepth; d <= MaxDepth; d++ {
		assert.NoError(t, p.ValidateDepth(d))
	}
	assert.True(t, eris.Is(p.ValidateDepth(0), ErrInvalidDepth))
	assert.True(t, eris.Is(p.ValidateDepth(6), ErrInvalidDepth))
	assert.True(t, eris.Is(p.ValidateDepth(-1), ErrInvalidDepth))
}

func TestValidateTier(t *testing.T) {
	p := NewPolicy()

	assert.NoError(t, p.ValidateTier("full_enterprise"))
	assert.True(t, eris.Is(p.ValidateTier("platinum_deluxe"), ErrInvalidTier))
	assert.True(t, eris.Is(p.ValidateTier(""), ErrInvalidTier))
}

func TestNewPolicyFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  - key: starter
    name: Starter
    price: 0
    depth_level: 1
    excludes: [equipment]
  - key: pro
    name: Pro
    price: 149
    depth_level: 4
`), 0o644))

	p, err := NewPolicyFromFile(path)
	require.NoError(t, err)

	tier, err := p.ByKey("pro")
	require.NoError(t, err)
	assert.Equal(t, 149.0, tier.Price)
	assert.Equal(t, 4, tier.DepthLevel)

	_, err = p.ByKey("basic_scout")
	assert.Error(t, err)
}

func TestNewPolicyFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"empty table", "tiers: []"},
		{"bad depth", "tiers:\n  - key: x\n    depth_level: 9"},
		{"duplicate depth", "tiers:\n  - key: a\n    depth_level: 2\n  - key: b\n    depth_level: 2"},
		{"missing key", "tiers:\n  - depth_level: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := NewPolicyFromFile(path)
			assert.Error(t, err)
		})
	}
}

func TestReusePrice_SameUserTenDays(t *testing.T) {
	q := ReusePrice(79, 10, true)

	// 0.3 same-user + 0.2 age band
	assert.InDelta(t, 0.5, q.DiscountRate, 0.0001)
	assert.InDelta(t, 39.50, q.FinalPrice, 0.0001)
	assert.Equal(t, FreshnessRecent, q.Freshness)
}

func TestReusePrice_DiscountCapped(t *testing.T) {
	q := ReusePrice(199, 365, false)

	// 0.5 + 0.6 would exceed the cap
	assert.InDelta(t, 0.8, q.DiscountRate, 0.0001)
	assert.InDelta(t, 39.80, q.FinalPrice, 0.0001)
	assert.Equal(t, FreshnessStale, q.Freshness)
}

func TestReusePrice_FreeTierAllZero(t *testing.T) {
	q := ReusePrice(0, 45, false)

	assert.Zero(t, q.BasePrice)
	assert.Zero(t, q.DiscountRate)
	assert.Zero(t, q.FinalPrice)
	assert.Equal(t, FreshnessAged, q.Freshness)
}

func TestReusePrice_DiscountRange(t *testing.T) {
	for _, age := range []int{0, 7, 8, 30, 31, 90, 91, 400} {
		for _, same := range []bool{true, false} {
			q := ReusePrice(100, age, same)
			assert.GreaterOrEqual(t, q.DiscountRate, 0.0)
			assert.LessOrEqual(t, q.DiscountRate, 0.8)
			assert.GreaterOrEqual(t, q.FinalPrice, 0.0)
		}
	}
}

func TestFreshnessFor_Bands(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{0, FreshnessFresh},
		{7, FreshnessFresh},
		{8, FreshnessRecent},
		{30, FreshnessRecent},
		{31, FreshnessAged},
		{90, FreshnessAged},
		{91, FreshnessStale},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FreshnessFor(tt.age), "age %d", tt.age)
	}
}
