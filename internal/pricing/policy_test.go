package pricing

import (
	"testing"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tieredEvent() *domain.Event {
	return &domain.Event{
		ID:          7,
		PricingType: domain.PricingTiered,
		FlatPrice:   8000,
		VVIPPrice:   30000,
		VIPPrice:    20000,
		CasualPrice: 10000,
	}
}

func TestPriceFor_Tiered(t *testing.T) {
	testCases := []struct {
		tier domain.Tier
		want int64
	}{
		{domain.TierVVIP, 30000},
		{domain.TierVIP, 20000},
		{domain.TierCasual, 10000},
	}

	for _, tc := range testCases {
		t.Run(string(tc.tier), func(t *testing.T) {
			price, err := PriceFor(tieredEvent(), tc.tier)
			require.NoError(t, err)
			assert.Equal(t, tc.want, price)
		})
	}
}

func TestPriceFor_UnsetTierFallsBackToFlat(t *testing.T) {
	event := tieredEvent()
	event.VIPPrice = 0

	price, err := PriceFor(event, domain.TierVIP)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), price)
}

func TestPriceFor_UnpricedTierRejected(t *testing.T) {
	event := &domain.Event{ID: 3, PricingType: domain.PricingTiered, VVIPPrice: 30000}

	_, err := PriceFor(event, domain.TierCasual)
	assert.ErrorIs(t, err, domain.ErrInvalidTier)

	total, err := Total(event, domain.TierCasual, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
	assert.Zero(t, total)

	price, err := PriceFor(event, domain.TierVVIP)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), price)
}

func TestPriceFor_TieredRequiresTier(t *testing.T) {
	_, err := PriceFor(tieredEvent(), domain.TierNone)
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
}

func TestPriceFor_FlatIgnoresTier(t *testing.T) {
	event := &domain.Event{PricingType: domain.PricingFlat, FlatPrice: 5000, VVIPPrice: 99999}

	for _, tier := range []domain.Tier{domain.TierNone, domain.TierVVIP, domain.TierCasual} {
		price, err := PriceFor(event, tier)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), price)

		normalized, err := NormalizeTier(event, tier)
		require.NoError(t, err)
		assert.Equal(t, domain.TierNone, normalized)
	}
}

func TestTotal(t *testing.T) {
	total, err := Total(tieredEvent(), domain.TierVVIP, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), total)
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]domain.Tier{
		"":       domain.TierNone,
		"none":   domain.TierNone,
		"vvip":   domain.TierVVIP,
		" VIP ":  domain.TierVIP,
		"Casual": domain.TierCasual,
	} {
		got, err := ParseTier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTier("gold")
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
}
