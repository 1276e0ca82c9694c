package backend

import (
	"context"
	"fmt"
	"net/url"

	"flyer-kart/internal/model"
)

func (c *Client) CreateCheckoutSession(ctx context.Context, payload *Multipart) (*model.CheckoutSession, error) {
	var session model.CheckoutSession
	if err := c.sendMultipart(ctx, "/api/checkout/create-session", payload, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session.URL == "" && session.SessionID == "" {
		return nil, fmt.Errorf("failed to create checkout session: empty response")
	}
	return &session, nil
}

func (c *Client) GetSessionURL(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	path := "/api/checkout/get-session-url?sessionId=" + url.QueryEscape(sessionID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("failed to get checkout session url: %w", err)
	}
	return resp.URL, nil
}

func (c *Client) TestOrder(ctx context.Context, payload *Multipart) (*model.TestOrderResult, error) {
	var result model.TestOrderResult
	if err := c.sendMultipart(ctx, "/api/test-order", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to run test order: %w", err)
	}
	return &result, nil
}
