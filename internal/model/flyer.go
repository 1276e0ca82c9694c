package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID is a backend identifier. The API is not consistent about sending ids as
// strings or numbers, so both decode to the same string form.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// CategoryList holds one or many category names. The backend sends either a
// single string or an array.
type CategoryList []string

// UnmarshalJSON accepts a string, an array of strings or null.
func (c *CategoryList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = nil
			return nil
		}
		*c = CategoryList{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	out := make(CategoryList, 0, len(list))
	for _, name := range list {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*c = out
	return nil
}

// Contains reports whether name is in the list, ignoring case.
func (c CategoryList) Contains(name string) bool {
	for _, n := range c {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Flyer is a sellable flyer template from the catalog.
type Flyer struct {
	ID            ID              `json:"id"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	PriceTier     string          `json:"price_type,omitempty"`
	HasPhotos     bool            `json:"hasPhotos"`
	FormType      string          `json:"form_type,omitempty"`
	Image         string          `json:"image,omitempty"`
	Categories    CategoryList    `json:"categories,omitempty"`
	CategoryID    ID              `json:"category_id,omitempty"`
	RecentlyAdded bool            `json:"recently_added"`
	Featured      bool            `json:"featured"`
	CreatedAt     time.Time       `json:"created_at"`

	// PriceError is set when the backend price could not be parsed.
	// Price is zero in that case.
	PriceError error `json:"-"`
}

// UnmarshalJSON normalizes the price and category fields.
func (f *Flyer) UnmarshalJSON(b []byte) error {
	type alias Flyer
	aux := struct {
		*alias
		Price    json.RawMessage `json:"price"`
		Category CategoryList    `json:"category"`
		Name     string          `json:"name"`
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	price, err := ParsePrice(aux.Price)
	if err != nil {
		f.Price = decimal.Zero
		f.PriceError = err
	} else {
		f.Price = price
		f.PriceError = nil
	}

	if len(f.Categories) == 0 {
		f.Categories = aux.Category
	}
	if f.Title == "" {
		f.Title = aux.Name
	}

	return nil
}

// Orderable reports whether the flyer has a usable, positive price.
func (f *Flyer) Orderable() bool {
	return f.PriceError == nil && f.Price.IsPositive()
}

// SharesCategory reports whether both flyers have at least one category in common.
func (f *Flyer) SharesCategory(other *Flyer) bool {
	for _, name := range f.Categories {
		if other.Categories.Contains(name) {
			return true
		}
	}
	return false
}

// FlyerSummary is the denormalized product snapshot stored on cart items.
type FlyerSummary struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
	Price Amount `json:"price"`
}

// Category is a catalog category.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Banner is a promotional banner shown above the catalog.
type Banner struct {
	ID     ID     `json:"id"`
	Title  string `json:"title"`
	Image  string `json:"image"`
	Link   string `json:"link,omitempty"`
	Active bool   `json:"active"`
}
