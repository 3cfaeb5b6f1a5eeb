package api

import (
	"context"
	"net/http"
)

// Plan is one purchasable subscription tier for one billing cycle.
type Plan struct {
	Plan        string   `json:"plan"`    // silver | gold
	Billing     string   `json:"billing"` // monthly | yearly
	AmountInINR int      `json:"amountInINR"`
	Features    []string `json:"features"`
}

// Subscription is the current user's subscription snapshot.
type Subscription struct {
	Plan             string `json:"plan"`
	Billing          string `json:"billing"`
	Status           string `json:"status"`
	CurrentPeriodEnd string `json:"currentPeriodEnd"`
}

// Plans fetches the plan catalog.
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var resp struct {
		Plans []Plan `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/plans", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// CheckoutURL starts a checkout session with the external payment provider
// and returns the redirect URL.
func (c *Client) CheckoutURL(ctx context.Context, plan, billing string) (string, error) {
	body := map[string]string{"plan": plan, "billing": billing}
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/stripe/checkout", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// PortalURL opens the provider's billing portal and returns its URL.
func (c *Client) PortalURL(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/stripe/portal", nil, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// GetSubscription fetches the current user's subscription state.
func (c *Client) GetSubscription(ctx context.Context) (Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/me/subscription", nil, nil, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}
