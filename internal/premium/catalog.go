// Package premium implements the subscription paywall: the plan catalog with
// local fallback perks, and the checkout/portal handoff to the external
// payment processor.
package premium

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ArponRoy7/codemate-go/internal/api"
)

// Known plan and billing-cycle identifiers.
const (
	PlanSilver = "silver"
	PlanGold   = "gold"

	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// fallbackPerks fill in for plans whose server record carries no feature
// list.
var fallbackPerks = map[string][]string{
	PlanSilver: {
		"Unlimited daily connection requests (up to 50/day)",
		"Priority feed refresh every 10 min",
		"Access to Silver-only project templates",
		"Basic email support (48h SLA)",
	},
	PlanGold: {
		"Unlimited connections & smart match boosts",
		"Real-time feed refresh + advanced filters",
		"All premium project templates & assets",
		"Mentor DM priority + faster reviews",
		"Early access to new features",
		"Priority support (4h SLA)",
	},
}

// Catalog is the plan/price/feature view backed by GET /plans. It is
// goroutine-safe.
type Catalog struct {
	api *api.Client

	mu       sync.Mutex
	prices   map[string]map[string]int // plan -> billing -> amount in INR
	features map[string][]string
}

// NewCatalog creates a catalog holding only the fallback perks until Load
// runs.
func NewCatalog(client *api.Client) *Catalog {
	return &Catalog{
		api:      client,
		prices:   map[string]map[string]int{},
		features: map[string][]string{},
	}
}

// Load fetches the plan records. A fetch failure is logged and leaves the
// catalog on its defaults rather than surfacing an error; the paywall still
// renders with fallback perks and no prices.
func (c *Catalog) Load(ctx context.Context) {
	plans, err := c.api.Plans(ctx)
	if err != nil {
		log.Printf("[premium] plan fetch failed, using defaults: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range plans {
		if c.prices[p.Plan] == nil {
			c.prices[p.Plan] = map[string]int{}
		}
		c.prices[p.Plan][p.Billing] = p.AmountInINR
		if len(p.Features) > 0 {
			c.features[p.Plan] = p.Features
		}
	}
}

// Price returns the amount in INR for a plan and billing cycle. ok is false
// when the server never supplied one.
func (c *Catalog) Price(plan, billing string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	amount, ok := c.prices[plan][billing]
	return amount, ok
}

// Features returns the perk list for a plan, falling back to the built-in
// perks when the server record had none.
func (c *Catalog) Features(plan string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.features[plan]; ok {
		return append([]string(nil), f...)
	}
	return append([]string(nil), fallbackPerks[plan]...)
}

// Checkout starts a checkout session and returns the redirect URL the
// processor wants the user sent to.
func (c *Catalog) Checkout(ctx context.Context, plan, billing string) (string, error) {
	url, err := c.api.CheckoutURL(ctx, plan, billing)
	if err != nil {
		return "", fmt.Errorf("start checkout: %w", err)
	}
	if url == "" {
		return "", fmt.Errorf("start checkout: no redirect URL in response")
	}
	return url, nil
}

// Portal returns the billing-portal redirect URL for the current user.
func (c *Catalog) Portal(ctx context.Context) (string, error) {
	url, err := c.api.PortalURL(ctx)
	if err != nil {
		return "", fmt.Errorf("open billing portal: %w", err)
	}
	return url, nil
}

// Subscription fetches the current user's subscription snapshot.
func (c *Catalog) Subscription(ctx context.Context) (api.Subscription, error) {
	return c.api.GetSubscription(ctx)
}
