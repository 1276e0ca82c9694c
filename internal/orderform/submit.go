package orderform

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/model"
)

// CartAdder is the cart operation a submission delegates to.
type CartAdder interface {
	AddToCart(ctx context.Context, userID string, payload *backend.Multipart) error
}

// Payload serializes the form into the multipart body the backend expects.
func (s *Store) Payload(userID string) (*backend.Multipart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.flyer == nil {
		return nil, model.ErrFormNotLoaded
	}
	return s.payloadLocked(userID)
}

func (s *Store) payloadLocked(userID string) (*backend.Multipart, error) {
	st := &s.state

	djs, err := json.Marshal(names(st.DJs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode djs: %w", err)
	}
	hosts, err := json.Marshal(names(st.Hosts))
	if err != nil {
		return nil, fmt.Errorf("failed to encode hosts: %w", err)
	}

	subtotal := s.subtotalLocked().StringFixed(2)

	b := backend.NewFormBuilder().
		Field("request_id", uuid.NewString()).
		Field("userId", userID).
		Field("flyerId", st.Event.FlyerID.String()).
		Field("categoryId", st.Event.CategoryID.String()).
		Field("presenter", st.Event.Presenter).
		Field("event_title", st.Event.Title).
		Field("event_date", st.Event.Date).
		Field("flyer_info", st.Event.Info).
		Field("address_phone", st.Event.AddressPhone).
		Field("venue_text", st.Event.Venue.Text).
		Field("djs", string(djs)).
		Field("hosts", string(hosts)).
		Field("story_size_version", strconv.FormatBool(st.Extras.StorySize)).
		Field("custom_flyer", strconv.FormatBool(st.Extras.Custom)).
		Field("animated_flyer", strconv.FormatBool(st.Extras.Animated)).
		Field("instagram_post_size", strconv.FormatBool(st.Extras.InstagramPost)).
		Field("delivery_time", st.Delivery).
		Field("custom_notes", st.CustomNote).
		Field("subtotal", subtotal).
		Field("total_price", subtotal).
		File("venue_logo", st.Event.Venue.Logo)

	for i, dj := range st.DJs {
		b.File("dj_photo_"+strconv.Itoa(i), dj.Photo)
	}
	for i, host := range st.Hosts {
		b.File("host_photo_"+strconv.Itoa(i), host.Photo)
	}
	for i, sponsor := range st.Sponsors {
		b.File("sponsor_"+strconv.Itoa(i), sponsor)
	}

	return b.Build()
}

// beginSubmit validates the form, marks a submission in flight and returns
// its payload.
func (s *Store) beginSubmit(userID string) (*backend.Multipart, error) {
	if userID == "" {
		return nil, model.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flyer == nil {
		return nil, model.ErrFormNotLoaded
	}
	if s.submitting {
		return nil, model.ErrSubmissionInFlight
	}
	if v := validate(&s.state); !v.Valid {
		return nil, &ValidationError{Errors: v.Errors}
	}

	payload, err := s.payloadLocked(userID)
	if err != nil {
		return nil, err
	}
	s.submitting = true
	return payload, nil
}

func (s *Store) endSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.err = err
	}
}

// IsSubmitting reports whether a submission is in flight.
func (s *Store) IsSubmitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}

// AddToCart validates the form and hands it to the cart. The form is kept
// as-is afterwards.
func (s *Store) AddToCart(ctx context.Context, cart CartAdder, userID string) error {
	payload, err := s.beginSubmit(userID)
	if err != nil {
		return err
	}

	err = cart.AddToCart(ctx, userID, payload)
	s.endSubmit(err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to add order to cart")
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("order added to cart")
	return nil
}

// Checkout validates the form and creates a payment session for it.
func (s *Store) Checkout(ctx context.Context, userID string) (*model.CheckoutSession, error) {
	payload, err := s.beginSubmit(userID)
	if err != nil {
		return nil, err
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, payload)
	if err == nil && session.URL == "" {
		session.URL, err = s.checkout.GetSessionURL(ctx, session.SessionID)
	}
	s.endSubmit(err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create checkout session")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("session_id", session.SessionID).
		Msg("checkout session created")
	return session, nil
}

// TestOrder sends the form to the non-persisting validation endpoint.
func (s *Store) TestOrder(ctx context.Context, userID string) (*model.TestOrderResult, error) {
	payload, err := s.beginSubmit(userID)
	if err != nil {
		return nil, err
	}

	result, err := s.checkout.TestOrder(ctx, payload)
	s.endSubmit(err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("test order failed")
		return nil, err
	}
	return result, nil
}
