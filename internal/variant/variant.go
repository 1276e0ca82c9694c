// Package variant selects the order-form layout for a flyer.
package variant

import (
	"strings"

	"github.com/shopspring/decimal"

	"flyer-kart/internal/model"
)

// Variant identifies one order-form presentation.
type Variant string

const (
	Birthday  Variant = "birthday"
	NoPhoto10 Variant = "no_photo_10"
	NoPhoto15 Variant = "no_photo_15"
	NoPhoto40 Variant = "no_photo_40"
	Photo10   Variant = "photo_10"
	Photo15   Variant = "photo_15"
	Default   Variant = "default"
)

const (
	// MaxDJs is the DJ cap for every layout except NoPhoto10.
	MaxDJs = 4
	// MaxHosts is the host cap for every layout.
	MaxHosts = 2
)

var (
	ten     = decimal.NewFromInt(10)
	fifteen = decimal.NewFromInt(15)
	forty   = decimal.NewFromInt(40)
)

// Attributes are the flyer fields that drive routing.
type Attributes struct {
	Price      decimal.Decimal
	Categories []string
	FormType   string
	HasPhotos  bool
}

// AttributesOf extracts routing attributes from a flyer.
func AttributesOf(f *model.Flyer) Attributes {
	return Attributes{
		Price:      f.Price,
		Categories: f.Categories,
		FormType:   f.FormType,
		HasPhotos:  f.HasPhotos,
	}
}

// Select maps attributes to a variant. First match wins.
func Select(a Attributes) Variant {
	if a.mentions("birthday") {
		return Birthday
	}

	if a.isNoPhoto() {
		switch {
		case a.Price.Equal(ten):
			return NoPhoto10
		case a.Price.Equal(fifteen):
			return NoPhoto15
		case a.Price.GreaterThanOrEqual(forty):
			return NoPhoto40
		}
		return Default
	}

	if a.HasPhotos {
		switch {
		case a.Price.Equal(ten):
			return Photo10
		case a.Price.Equal(fifteen):
			return Photo15
		}
	}

	return Default
}

func (a Attributes) isNoPhoto() bool {
	return a.mentions("no photo") || a.mentions("no-photo") || a.mentions("nophoto")
}

func (a Attributes) mentions(needle string) bool {
	if strings.Contains(strings.ToLower(a.FormType), needle) {
		return true
	}
	for _, c := range a.Categories {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

// Layout describes the entity slots a variant renders.
type Layout struct {
	Variant     Variant `json:"variant"`
	MaxDJs      int     `json:"maxDjs"`
	MaxHosts    int     `json:"maxHosts"`
	DJPhotos    []bool  `json:"djPhotos"`
	HostPhotos  []bool  `json:"hostPhotos"`
	SponsorLogo bool    `json:"sponsorLogos"` // sponsor slots accept images
}

// LayoutFor returns the slot layout of v. hasPhotos drives per-slot photo
// support for the Default and Birthday forms.
func LayoutFor(v Variant, hasPhotos bool) Layout {
	l := Layout{
		Variant:  v,
		MaxDJs:   MaxDJs,
		MaxHosts: MaxHosts,
	}

	switch v {
	case NoPhoto10:
		l.MaxDJs = 2
		l.DJPhotos = slots(l.MaxDJs, 0)
		l.HostPhotos = slots(l.MaxHosts, 0)
	case NoPhoto15, NoPhoto40:
		l.DJPhotos = slots(l.MaxDJs, 0)
		l.HostPhotos = slots(l.MaxHosts, 0)
	case Photo10:
		l.DJPhotos = slots(l.MaxDJs, 2)
		l.HostPhotos = slots(l.MaxHosts, 1)
		l.SponsorLogo = true
	case Photo15:
		l.DJPhotos = slots(l.MaxDJs, l.MaxDJs)
		l.HostPhotos = slots(l.MaxHosts, l.MaxHosts)
		l.SponsorLogo = true
	default:
		n := 0
		if hasPhotos {
			n = MaxDJs
		}
		l.DJPhotos = slots(l.MaxDJs, n)
		l.HostPhotos = slots(l.MaxHosts, min(n, l.MaxHosts))
		l.SponsorLogo = hasPhotos
	}

	return l
}

// DJPhoto reports whether DJ slot i accepts a photo.
func (l Layout) DJPhoto(i int) bool {
	return i >= 0 && i < len(l.DJPhotos) && l.DJPhotos[i]
}

// HostPhoto reports whether host slot i accepts a photo.
func (l Layout) HostPhoto(i int) bool {
	return i >= 0 && i < len(l.HostPhotos) && l.HostPhotos[i]
}

// slots returns n flags where the first photos are true.
func slots(n, photos int) []bool {
	out := make([]bool, n)
	for i := 0; i < photos && i < n; i++ {
		out[i] = true
	}
	return out
}
