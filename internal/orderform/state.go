package orderform

import "flyer-kart/internal/model"

const (
	initialDJs   = 2
	initialHosts = 1
	// SponsorSlots is the fixed number of sponsor logo slots.
	SponsorSlots = 3
)

// Entity is a DJ or host entry.
type Entity struct {
	Name  string        `json:"name"`
	Photo *model.Upload `json:"photo,omitempty"`
}

// Venue identifies the venue by either an uploaded logo or free text, never both.
type Venue struct {
	Logo *model.Upload `json:"logo,omitempty"`
	Text string        `json:"text"`
}

// EventDetails are the top-level event fields.
type EventDetails struct {
	Presenter    string   `json:"presenter"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Info         string   `json:"info"`
	AddressPhone string   `json:"addressPhone"`
	FlyerID      model.ID `json:"flyerId"`
	CategoryID   model.ID `json:"categoryId"`
	Venue        Venue    `json:"venue"`
}

// Extras are the optional paid add-ons.
type Extras struct {
	StorySize     bool `json:"storySizeVersion"`
	Custom        bool `json:"customFlyer"`
	Animated      bool `json:"animatedFlyer"`
	InstagramPost bool `json:"instagramPostSize"`
}

// State is one in-progress order configuration. It has no stored subtotal.
type State struct {
	Event      EventDetails                `json:"eventDetails"`
	DJs        []Entity                    `json:"djs"`
	Hosts      []Entity                    `json:"hosts"`
	Sponsors   [SponsorSlots]*model.Upload `json:"sponsors"`
	Extras     Extras                      `json:"extras"`
	Delivery   string                      `json:"deliveryTime"`
	CustomNote string                      `json:"customNote"`
}

func newState() State {
	return State{
		DJs:   make([]Entity, initialDJs),
		Hosts: make([]Entity, initialHosts),
	}
}

// clone copies the entity slices so callers cannot alias store state.
// Upload payloads are immutable once attached and are shared.
func (s State) clone() State {
	out := s
	out.DJs = append([]Entity(nil), s.DJs...)
	out.Hosts = append([]Entity(nil), s.Hosts...)
	return out
}

func names(entities []Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Name
	}
	return out
}
