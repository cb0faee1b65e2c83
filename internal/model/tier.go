// Package model defines domain entities for the application.
package model

import "fmt"

// Tier represents a named subscription level with a fixed monthly price.
type Tier struct {
	Key         string
	DisplayName string
	// UnitAmount is the monthly price in minor currency units (cents).
	UnitAmount int64
}

// Currency is the only currency the catalog sells in.
const Currency = "usd"

// tierOrder preserves the catalog's display ordering.
var tierOrder = []string{"bronze8", "silver8", "gold8", "platinum8", "diamond8"}

// Tiers is the closed set of subscription tiers. The key set is fixed
// at startup; resolving any other key is an error.
var Tiers = map[string]Tier{
	"bronze8":   {Key: "bronze8", DisplayName: "Bronze 8", UnitAmount: 999},
	"silver8":   {Key: "silver8", DisplayName: "Silver 8", UnitAmount: 1599},
	"gold8":     {Key: "gold8", DisplayName: "Gold 8", UnitAmount: 2199},
	"platinum8": {Key: "platinum8", DisplayName: "Platinum 8", UnitAmount: 2799},
	"diamond8":  {Key: "diamond8", DisplayName: "Diamond 8", UnitAmount: 5999},
}

// LookupTier returns the tier for the given key.
func LookupTier(key string) (Tier, bool) {
	t, ok := Tiers[key]
	return t, ok
}

// ListTiers returns all tiers in display order.
func ListTiers() []Tier {
	out := make([]Tier, 0, len(tierOrder))
	for _, key := range tierOrder {
		out = append(out, Tiers[key])
	}
	return out
}

// PriceString formats the monthly price for display, e.g. "$21.99/mo".
func (t Tier) PriceString() string {
	return fmt.Sprintf("$%d.%02d/mo", t.UnitAmount/100, t.UnitAmount%100)
}
