// Package pricing computes per-ticket prices for events.
package pricing

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

// ParseTier accepts tier names case-insensitively; an empty string means no tier.
func ParseTier(s string) (domain.Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return domain.TierNone, nil
	case "VVIP":
		return domain.TierVVIP, nil
	case "VIP":
		return domain.TierVIP, nil
	case "CASUAL":
		return domain.TierCasual, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidTier, s)
}

// NormalizeTier forces TierNone for flat-priced events and requires a real tier for tiered ones.
func NormalizeTier(event *domain.Event, tier domain.Tier) (domain.Tier, error) {
	if event.PricingType != domain.PricingTiered {
		return domain.TierNone, nil
	}
	switch tier {
	case domain.TierVVIP, domain.TierVIP, domain.TierCasual:
		return tier, nil
	}
	return "", fmt.Errorf("%w: event %d requires one of VVIP, VIP, CASUAL", domain.ErrInvalidTier, event.ID)
}

// PriceFor returns the unit price of a ticket. Tier prices that are not configured fall back to the
// event's flat price.
func PriceFor(event *domain.Event, tier domain.Tier) (int64, error) {
	tier, err := NormalizeTier(event, tier)
	if err != nil {
		return 0, err
	}

	var price int64
	switch tier {
	case domain.TierVVIP:
		price = event.VVIPPrice
	case domain.TierVIP:
		price = event.VIPPrice
	case domain.TierCasual:
		price = event.CasualPrice
	}
	if price == 0 {
		price = event.FlatPrice
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: tier %s has no price for event %d", domain.ErrInvalidTier, tier, event.ID)
	}
	return price, nil
}

// Total prices a whole booking.
func Total(event *domain.Event, tier domain.Tier, tickets int) (int64, error) {
	unit, err := PriceFor(event, tier)
	if err != nil {
		return 0, err
	}
	return unit * int64(tickets), nil
}
