package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/db"
	"github.com/nravish/kanakam-backend/internal/pricing"
)

func setupRateServiceTest(t *testing.T, feed RateFeed) MetalRateService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	rateRepo := repository.NewMetalRateRepository(testDB)
	return NewMetalRateService(rateRepo, feed, time.Minute)
}

func TestMetalRateService_UpsertAndGet(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)
	ctx := context.Background()

	err := rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7400.50"),
		Source:      "Manual",
	})
	require.NoError(t, err)

	rate, err := rateService.GetRateByMetal(model.MetalGold, pricing.Purity24K)
	require.NoError(t, err)
	assert.Equal(t, "7400.5", rate.RatePerGram.String())
	assert.Equal(t, "Manual", rate.Source)
}

func TestMetalRateService_UpsertRate_RejectsNegative(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)

	err := rateService.UpsertRate(context.Background(), &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, ErrNegativeRateQuote)
}

func TestMetalRateService_GetRateByMetal_NotFound(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)

	_, err := rateService.GetRateByMetal(model.MetalPlatinum, "")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestMetalRateService_GetLatestRates_PicksNewestPerPair(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)
	ctx := context.Background()

	older := &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7000"),
		SourceDate:  time.Now().AddDate(0, 0, -3),
	}
	newer := &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7450"),
		SourceDate:  time.Now(),
	}
	require.NoError(t, rateService.UpsertRate(ctx, older))
	require.NoError(t, rateService.UpsertRate(ctx, newer))

	rates, err := rateService.GetLatestRates()
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "7450", rates[0].RatePerGram.String())
}

func TestMetalRateService_GetLatestRates_DayOverDayChange(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)
	ctx := context.Background()

	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7000"),
		SourceDate:  time.Now().AddDate(0, 0, -1),
	}))
	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7350"),
		SourceDate:  time.Now(),
	}))

	rates, err := rateService.GetLatestRates()
	require.NoError(t, err)
	require.Len(t, rates, 1)
	require.NotNil(t, rates[0].ChangeAmount)
	assert.Equal(t, "350", rates[0].ChangeAmount.String())
	assert.Equal(t, "5", rates[0].ChangePercent.String())
}

func TestMetalRateService_GetRateHistory(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)
	ctx := context.Background()

	// One quote inside the window, one far outside it.
	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("6900"),
		SourceDate:  time.Now().AddDate(0, -6, 0),
	}))
	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7400"),
		SourceDate:  time.Now().AddDate(0, 0, -2),
	}))

	history, err := rateService.GetRateHistory(model.MetalGold, pricing.Purity24K, "1w")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "7400", history[0].RatePerGram.String())

	history, err = rateService.GetRateHistory(model.MetalGold, pricing.Purity24K, "1y")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMetalRateService_CurrentFineRate(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)
	ctx := context.Background()

	_, err := rateService.CurrentFineRate(ctx, model.MetalGold)
	assert.ErrorIs(t, err, ErrRateNotFound)

	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString("7400"),
	}))
	// A 22K quote must never shadow the fine rate.
	require.NoError(t, rateService.UpsertRate(ctx, &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity22K,
		RatePerGram: decimal.RequireFromString("6785.80"),
	}))

	rate, err := rateService.CurrentFineRate(ctx, model.MetalGold)
	require.NoError(t, err)
	assert.Equal(t, "7400", rate.String())
}

func TestMetalRateService_RefreshFromFeed_Unset(t *testing.T) {
	rateService := setupRateServiceTest(t, nil)

	err := rateService.RefreshFromFeed()
	assert.ErrorIs(t, err, ErrRateFeedUnset)
}

func TestGoldFeedClient_FetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feed-key", r.Header.Get("x-access-token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"timestamp": 1756700000,
			"metal": "XAU",
			"currency": "INR",
			"price": 230000.0,
			"price_gram_24k": 7400.129,
			"price_gram_22k": 6785.45,
			"price_gram_18k": 5550.1,
			"price_gram_14k": 0,
			"price_gram_10k": 0
		}`))
	}))
	defer server.Close()

	client := NewGoldFeedClient(server.URL, "feed-key")
	quotes, err := client.FetchRates()
	require.NoError(t, err)

	// Zero tiers are dropped.
	require.Len(t, quotes, 3)
	assert.Equal(t, pricing.Purity24K, quotes[0].Purity)
	assert.Equal(t, "7400.13", quotes[0].RatePerGram.String())
	assert.Equal(t, model.MetalGold, quotes[0].Metal)
}

func TestGoldFeedClient_FetchRates_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewGoldFeedClient(server.URL, "bad-key")
	_, err := client.FetchRates()
	assert.Error(t, err)
}

func TestMetalRateService_RefreshFromFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price_gram_24k": 7400.0, "price_gram_22k": 6785.8}`))
	}))
	defer server.Close()

	rateService := setupRateServiceTest(t, NewGoldFeedClient(server.URL, ""))

	require.NoError(t, rateService.RefreshFromFeed())

	rate, err := rateService.GetRateByMetal(model.MetalGold, pricing.Purity24K)
	require.NoError(t, err)
	assert.Equal(t, "7400", rate.RatePerGram.String())
	assert.Equal(t, "External feed", rate.Source)
}
