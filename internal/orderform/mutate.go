package orderform

import (
	"fmt"
	"strings"

	"flyer-kart/internal/model"
)

// Event detail field names accepted by UpdateEventDetails.
const (
	FieldPresenter    = "presenter"
	FieldTitle        = "title"
	FieldDate         = "date"
	FieldInfo         = "info"
	FieldAddressPhone = "addressPhone"
	FieldVenueText    = "venueText"
)

// mutate runs fn against the state of a loaded form.
func (s *Store) mutate(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flyer == nil {
		return model.ErrFormNotLoaded
	}
	return fn(&s.state)
}

// UpdateEventDetails sets a single event detail field.
func (s *Store) UpdateEventDetails(field, value string) error {
	return s.mutate(func(st *State) error {
		switch field {
		case FieldPresenter:
			st.Event.Presenter = value
		case FieldTitle:
			st.Event.Title = value
		case FieldDate:
			st.Event.Date = strings.TrimSpace(value)
		case FieldInfo:
			st.Event.Info = value
		case FieldAddressPhone:
			st.Event.AddressPhone = value
		case FieldVenueText:
			st.Event.Venue = Venue{Text: value}
		default:
			return fmt.Errorf("%w: %q", model.ErrUnknownField, field)
		}
		return nil
	})
}

// SetVenueLogo attaches a venue logo and clears the venue text.
func (s *Store) SetVenueLogo(logo *model.Upload) error {
	return s.mutate(func(st *State) error {
		st.Event.Venue = Venue{Logo: logo}
		return nil
	})
}

// SetVenueText sets the venue text and clears the venue logo.
func (s *Store) SetVenueText(text string) error {
	return s.mutate(func(st *State) error {
		st.Event.Venue = Venue{Text: text}
		return nil
	})
}

// UpdateDJName renames DJ i.
func (s *Store) UpdateDJName(i int, name string) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.DJs) {
			return model.ErrIndexOutOfRange
		}
		st.DJs[i].Name = name
		return nil
	})
}

// UpdateDJPhoto sets or clears (nil) the photo of DJ i.
func (s *Store) UpdateDJPhoto(i int, photo *model.Upload) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.DJs) {
			return model.ErrIndexOutOfRange
		}
		if photo != nil && !s.layout.DJPhoto(i) {
			return model.ErrPhotoNotSupported
		}
		st.DJs[i].Photo = photo
		return nil
	})
}

// AddDJ appends an empty DJ entry up to the layout cap.
func (s *Store) AddDJ() error {
	return s.mutate(func(st *State) error {
		if len(st.DJs) >= s.layout.MaxDJs {
			return model.NewDomainError(model.ErrCodeMaxReached,
				fmt.Sprintf("You can add up to %d DJs", s.layout.MaxDJs))
		}
		st.DJs = append(st.DJs, Entity{})
		return nil
	})
}

// RemoveDJ drops DJ i.
func (s *Store) RemoveDJ(i int) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.DJs) {
			return model.ErrIndexOutOfRange
		}
		st.DJs = append(st.DJs[:i:i], st.DJs[i+1:]...)
		return nil
	})
}

// UpdateHostName renames host i.
func (s *Store) UpdateHostName(i int, name string) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.Hosts) {
			return model.ErrIndexOutOfRange
		}
		st.Hosts[i].Name = name
		return nil
	})
}

// UpdateHostPhoto sets or clears (nil) the photo of host i.
func (s *Store) UpdateHostPhoto(i int, photo *model.Upload) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.Hosts) {
			return model.ErrIndexOutOfRange
		}
		if photo != nil && !s.layout.HostPhoto(i) {
			return model.ErrPhotoNotSupported
		}
		st.Hosts[i].Photo = photo
		return nil
	})
}

// AddHost appends an empty host entry up to the layout cap.
func (s *Store) AddHost() error {
	return s.mutate(func(st *State) error {
		if len(st.Hosts) >= s.layout.MaxHosts {
			return model.NewDomainError(model.ErrCodeMaxReached,
				fmt.Sprintf("You can add up to %d hosts", s.layout.MaxHosts))
		}
		st.Hosts = append(st.Hosts, Entity{})
		return nil
	})
}

// RemoveHost drops host i. The last host cannot be removed.
func (s *Store) RemoveHost(i int) error {
	return s.mutate(func(st *State) error {
		if i < 0 || i >= len(st.Hosts) {
			return model.ErrIndexOutOfRange
		}
		if len(st.Hosts) <= 1 {
			return model.ErrMinReached
		}
		st.Hosts = append(st.Hosts[:i:i], st.Hosts[i+1:]...)
		return nil
	})
}

// UpdateSponsor sets or clears (nil) a sponsor slot.
func (s *Store) UpdateSponsor(slot int, logo *model.Upload) error {
	return s.mutate(func(st *State) error {
		if slot < 0 || slot >= SponsorSlots {
			return model.ErrIndexOutOfRange
		}
		if logo != nil && !s.layout.SponsorLogo {
			return model.ErrPhotoNotSupported
		}
		st.Sponsors[slot] = logo
		return nil
	})
}

// ToggleExtra flips an extra and returns its new value.
func (s *Store) ToggleExtra(key ExtraKey) (bool, error) {
	var on bool
	err := s.mutate(func(st *State) error {
		v, ok := st.Extras.toggle(key)
		if !ok {
			return fmt.Errorf("%w: extra %q", model.ErrUnknownOption, key)
		}
		on = v
		return nil
	})
	return on, err
}

// UpdateDeliveryTime selects a delivery option. An empty value clears it.
func (s *Store) UpdateDeliveryTime(option string) error {
	return s.mutate(func(st *State) error {
		if _, ok := DeliveryPrice(option); !ok {
			return fmt.Errorf("%w: delivery %q", model.ErrUnknownOption, option)
		}
		st.Delivery = option
		return nil
	})
}

// UpdateCustomNote sets the note for the designer.
func (s *Store) UpdateCustomNote(note string) error {
	return s.mutate(func(st *State) error {
		st.CustomNote = note
		return nil
	})
}
