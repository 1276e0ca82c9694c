package orderform

import (
	"github.com/shopspring/decimal"

	"flyer-kart/internal/model"
)

// ExtraKey names an extra add-on.
type ExtraKey string

const (
	ExtraStorySize     ExtraKey = "storySizeVersion"
	ExtraCustom        ExtraKey = "customFlyer"
	ExtraAnimated      ExtraKey = "animatedFlyer"
	ExtraInstagramPost ExtraKey = "instagramPostSize"
)

// Delivery options.
const (
	Delivery24h = "24h"
	Delivery5h  = "5h"
	Delivery1h  = "1h"
)

var extraPrices = map[ExtraKey]decimal.Decimal{
	ExtraStorySize:     decimal.NewFromInt(10),
	ExtraCustom:        decimal.NewFromInt(10),
	ExtraAnimated:      decimal.NewFromInt(25),
	ExtraInstagramPost: decimal.Zero,
}

var deliveryPrices = map[string]decimal.Decimal{
	Delivery24h: decimal.Zero,
	Delivery5h:  decimal.NewFromInt(10),
	Delivery1h:  decimal.NewFromInt(20),
}

var extraLabels = map[ExtraKey]string{
	ExtraStorySize:     "Story size version",
	ExtraCustom:        "Custom flyer",
	ExtraAnimated:      "Animated flyer",
	ExtraInstagramPost: "Instagram post size",
}

// extraOrder fixes the order of price lines.
var extraOrder = []ExtraKey{ExtraStorySize, ExtraCustom, ExtraAnimated, ExtraInstagramPost}

// ExtraPrice returns the price delta of an extra.
func ExtraPrice(key ExtraKey) (decimal.Decimal, bool) {
	p, ok := extraPrices[key]
	return p, ok
}

// DeliveryPrice returns the surcharge of a delivery option. The empty
// option costs nothing.
func DeliveryPrice(option string) (decimal.Decimal, bool) {
	if option == "" {
		return decimal.Zero, true
	}
	p, ok := deliveryPrices[option]
	return p, ok
}

func (e Extras) enabled(key ExtraKey) bool {
	switch key {
	case ExtraStorySize:
		return e.StorySize
	case ExtraCustom:
		return e.Custom
	case ExtraAnimated:
		return e.Animated
	case ExtraInstagramPost:
		return e.InstagramPost
	}
	return false
}

func (e *Extras) toggle(key ExtraKey) (bool, bool) {
	switch key {
	case ExtraStorySize:
		e.StorySize = !e.StorySize
		return e.StorySize, true
	case ExtraCustom:
		e.Custom = !e.Custom
		return e.Custom, true
	case ExtraAnimated:
		e.Animated = !e.Animated
		return e.Animated, true
	case ExtraInstagramPost:
		e.InstagramPost = !e.InstagramPost
		return e.InstagramPost, true
	}
	return false, false
}

// Subtotal is base + active extras + delivery surcharge.
func Subtotal(base decimal.Decimal, extras Extras, delivery string) decimal.Decimal {
	total := base
	for _, key := range extraOrder {
		if extras.enabled(key) {
			total = total.Add(extraPrices[key])
		}
	}
	if p, ok := DeliveryPrice(delivery); ok {
		total = total.Add(p)
	}
	return total
}

// PriceLine is one row of a subtotal breakdown.
type PriceLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown lists the components of Subtotal in display order.
func Breakdown(flyer *model.Flyer, extras Extras, delivery string) []PriceLine {
	lines := []PriceLine{{Label: flyer.Title, Amount: flyer.Price}}
	for _, key := range extraOrder {
		if extras.enabled(key) {
			lines = append(lines, PriceLine{Label: extraLabels[key], Amount: extraPrices[key]})
		}
	}
	if delivery != "" {
		if p, ok := DeliveryPrice(delivery); ok {
			lines = append(lines, PriceLine{Label: delivery + " delivery", Amount: p})
		}
	}
	return lines
}
