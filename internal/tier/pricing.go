package tier

import "math"

// Reuse-pricing constants. A repeat request for an already-computed address
// pays a discounted price that grows with the age of the cached analysis.
const (
	sameUserDiscount  = 0.3
	otherUserDiscount = 0.5
	maxTotalDiscount  = 0.8
)

// Freshness labels for a cached analysis by age.
const (
	FreshnessFresh  = "fresh"  // 7 days or newer
	FreshnessRecent = "recent" // up to 30 days
	FreshnessAged   = "aged"   // up to 90 days
	FreshnessStale  = "stale"
)

// Quote is the reuse-pricing result for a cached analysis.
type Quote struct {
	BasePrice    float64 `json:"base_price"`
	DiscountRate float64 `json:"discount_rate"`
	FinalPrice   float64 `json:"final_price"`
	AgeDays      int     `json:"age_days"`
	Freshness    string  `json:"freshness"`
	SameUser     bool    `json:"same_user"`
}

// ReusePrice prices a repeat request. Pure function of its inputs. A free
// base price returns an all-zero quote without any division.
func ReusePrice(basePrice float64, ageDays int, sameUser bool) Quote {
	q := Quote{
		BasePrice: basePrice,
		AgeDays:   ageDays,
		Freshness: FreshnessFor(ageDays),
		SameUser:  sameUser,
	}
	if basePrice == 0 {
		return q
	}

	discount := otherUserDiscount
	if sameUser {
		discount = sameUserDiscount
	}
	discount += ageDiscount(ageDays)
	if discount > maxTotalDiscount {
		discount = maxTotalDiscount
	}

	q.DiscountRate = discount
	q.FinalPrice = math.Round(basePrice*(1-discount)*100) / 100
	return q
}

func ageDiscount(ageDays int) float64 {
	switch {
	case ageDays <= 7:
		return 0
	case ageDays <= 30:
		return 0.2
	case ageDays <= 90:
		return 0.4
	default:
		return 0.6
	}
}

// FreshnessFor labels a cached analysis by its age in days.
func FreshnessFor(ageDays int) string {
	switch {
	case ageDays <= 7:
		return FreshnessFresh
	case ageDays <= 30:
		return FreshnessRecent
	case ageDays <= 90:
		return FreshnessAged
	default:
		return FreshnessStale
	}
}
