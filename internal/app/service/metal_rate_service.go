package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
	"github.com/nravish/kanakam-backend/pkg/redis"
)

var (
	ErrRateNotFound      = errors.New("metal rate not found")
	ErrRateFeedFailed    = errors.New("failed to fetch rates from external feed")
	ErrRateFeedUnset     = errors.New("external rate feed is not configured")
	ErrInvalidMetal      = errors.New("unknown metal")
	ErrNegativeRateQuote = errors.New("rate per gram must not be negative")
)

// RateQuote is one per-gram quote from the external feed.
type RateQuote struct {
	Metal       model.Metal
	Purity      pricing.Purity
	RatePerGram decimal.Decimal
}

// RateFeed is the external market rate source. Its refresh/caching policy
// is its own concern; this service only consumes resolved quotes.
type RateFeed interface {
	FetchRates() ([]RateQuote, error)
}

// MetalRateService exposes market quotes to the admin console and hands
// the pricing path an already-resolved fine-metal rate.
type MetalRateService interface {
	GetLatestRates() ([]model.MetalRateResponse, error)
	GetRateByMetal(metal model.Metal, purity pricing.Purity) (*model.MetalRateResponse, error)
	GetRateHistory(metal model.Metal, purity pricing.Purity, period string) ([]model.MetalRateHistoryItem, error)
	// CurrentFineRate returns the latest per-gram quote for the pure
	// metal (24K for gold). The engine applies purity fractions itself,
	// so pricing always starts from the fine rate.
	CurrentFineRate(ctx context.Context, metal model.Metal) (decimal.Decimal, error)
	UpsertRate(ctx context.Context, rate *model.MetalRate) error
	RefreshFromFeed() error
}

type metalRateService struct {
	repo     repository.MetalRateRepository
	feed     RateFeed
	cacheTTL time.Duration
}

func NewMetalRateService(repo repository.MetalRateRepository, feed RateFeed, cacheTTL time.Duration) MetalRateService {
	return &metalRateService{
		repo:     repo,
		feed:     feed,
		cacheTTL: cacheTTL,
	}
}

// finePurity is the purity tier a metal's fine rate is quoted under.
func finePurity(metal model.Metal) pricing.Purity {
	if metal == model.MetalGold {
		return pricing.Purity24K
	}
	return ""
}

func (s *metalRateService) GetLatestRates() ([]model.MetalRateResponse, error) {
	rates, err := s.repo.FindLatest()
	if err != nil {
		logger.Error("Failed to get latest metal rates", err)
		return nil, err
	}

	responses := make([]model.MetalRateResponse, 0, len(rates))
	for _, rate := range rates {
		response := model.MetalRateResponse{
			Metal:       rate.Metal,
			Purity:      rate.Purity,
			RatePerGram: rate.RatePerGram,
			Source:      rate.Source,
			SourceDate:  rate.SourceDate.Format(time.RFC3339),
			UpdatedAt:   rate.UpdatedAt.Format(time.RFC3339),
		}

		// Day-over-day movement when yesterday's quote exists.
		yesterday := time.Now().AddDate(0, 0, -1)
		previous, err := s.repo.FindByMetalAndDate(rate.Metal, rate.Purity, yesterday)
		if err == nil && previous != nil && previous.RatePerGram.IsPositive() {
			change := rate.RatePerGram.Sub(previous.RatePerGram)
			percent := change.Div(previous.RatePerGram).Mul(decimal.NewFromInt(100)).Round(2)

			response.PreviousDayRate = &previous.RatePerGram
			response.ChangeAmount = &change
			response.ChangePercent = &percent
		}

		responses = append(responses, response)
	}

	return responses, nil
}

func (s *metalRateService) GetRateByMetal(metal model.Metal, purity pricing.Purity) (*model.MetalRateResponse, error) {
	rate, err := s.repo.FindLatestByMetal(metal, purity)
	if err != nil {
		logger.Error("Failed to get metal rate", err)
		return nil, err
	}
	if rate == nil {
		return nil, ErrRateNotFound
	}

	return &model.MetalRateResponse{
		Metal:       rate.Metal,
		Purity:      rate.Purity,
		RatePerGram: rate.RatePerGram,
		Source:      rate.Source,
		SourceDate:  rate.SourceDate.Format(time.RFC3339),
		UpdatedAt:   rate.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *metalRateService) GetRateHistory(metal model.Metal, purity pricing.Purity, period string) ([]model.MetalRateHistoryItem, error) {
	days := periodDays(period)
	startDate := time.Now().AddDate(0, 0, -days)
	endDate := time.Now()

	rates, err := s.repo.FindByMetalAndDateRange(metal, purity, startDate, endDate)
	if err != nil {
		logger.Error("Failed to get rate history", err)
		return nil, err
	}

	history := make([]model.MetalRateHistoryItem, 0, len(rates))
	for _, rate := range rates {
		history = append(history, model.MetalRateHistoryItem{
			Date:        rate.SourceDate.Format("2006-01-02"),
			RatePerGram: rate.RatePerGram,
		})
	}
	return history, nil
}

// periodDays converts a period keyword to a day count.
func periodDays(period string) int {
	switch period {
	case "1w":
		return 7
	case "1m":
		return 30
	case "3m":
		return 90
	case "1y":
		return 365
	case "all":
		return 730 // 2 years
	default:
		return 30
	}
}

func (s *metalRateService) CurrentFineRate(ctx context.Context, metal model.Metal) (decimal.Decimal, error) {
	purity := finePurity(metal)

	if rate, ok := redis.GetCachedRate(ctx, string(metal), string(purity)); ok {
		return rate, nil
	}

	stored, err := s.repo.FindLatestByMetal(metal, purity)
	if err != nil {
		logger.Error("Failed to look up fine rate", err, map[string]interface{}{
			"metal": metal,
		})
		return decimal.Zero, err
	}
	if stored == nil {
		return decimal.Zero, ErrRateNotFound
	}

	// Best effort: pricing still works when the cache is down.
	_ = redis.CacheRate(ctx, string(metal), string(purity), stored.RatePerGram, s.cacheTTL)

	return stored.RatePerGram, nil
}

func (s *metalRateService) UpsertRate(ctx context.Context, rate *model.MetalRate) error {
	if rate == nil {
		return fmt.Errorf("rate cannot be nil")
	}
	if rate.RatePerGram.IsNegative() {
		return ErrNegativeRateQuote
	}
	if rate.SourceDate.IsZero() {
		rate.SourceDate = time.Now()
	}

	if err := s.repo.Create(rate); err != nil {
		logger.Error("Failed to save metal rate", err)
		return err
	}

	redis.InvalidateRate(ctx, string(rate.Metal), string(rate.Purity))
	return nil
}

// RefreshFromFeed pulls the latest quotes from the external feed and
// stores them as today's market data.
func (s *metalRateService) RefreshFromFeed() error {
	if s.feed == nil {
		return ErrRateFeedUnset
	}

	quotes, err := s.feed.FetchRates()
	if err != nil {
		logger.Error("Failed to fetch rates from external feed", err)
		return ErrRateFeedFailed
	}

	now := time.Now()
	ctx := context.Background()
	for _, quote := range quotes {
		rate := &model.MetalRate{
			Metal:       quote.Metal,
			Purity:      quote.Purity,
			RatePerGram: quote.RatePerGram,
			Source:      "External feed",
			SourceDate:  now,
		}
		if err := s.repo.Create(rate); err != nil {
			logger.Error("Failed to save fetched rate", err)
			return err
		}
		redis.InvalidateRate(ctx, string(quote.Metal), string(quote.Purity))
	}

	logger.Info("Refreshed metal rates from external feed", map[string]interface{}{
		"count": len(quotes),
	})
	return nil
}

// GoldFeedClient pulls per-gram prices from a GOLDAPI-style endpoint.
type GoldFeedClient struct {
	baseURL string
	apiKey  string
}

func NewGoldFeedClient(baseURL, apiKey string) *GoldFeedClient {
	return &GoldFeedClient{baseURL: baseURL, apiKey: apiKey}
}

// goldFeedResponse mirrors the feed's JSON payload: gram prices per karat
// tier for the quoted metal.
type goldFeedResponse struct {
	Timestamp    int64   `json:"timestamp"`
	Metal        string  `json:"metal"`
	Currency     string  `json:"currency"`
	Price        float64 `json:"price"`
	PriceGram24K float64 `json:"price_gram_24k"`
	PriceGram22K float64 `json:"price_gram_22k"`
	PriceGram18K float64 `json:"price_gram_18k"`
	PriceGram14K float64 `json:"price_gram_14k"`
	PriceGram10K float64 `json:"price_gram_10k"`
}

// FetchRates calls the feed and converts its per-karat gram prices to
// quotes. Tiers the feed omits are skipped.
func (c *GoldFeedClient) FetchRates() ([]RateQuote, error) {
	if c.baseURL == "" {
		return nil, ErrRateFeedUnset
	}

	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequest(http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The feed expects its API key in a header.
	if c.apiKey != "" {
		req.Header.Set("x-access-token", c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rate feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rate feed returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var feed goldFeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}

	tiers := []struct {
		purity pricing.Purity
		price  float64
	}{
		{pricing.Purity24K, feed.PriceGram24K},
		{pricing.Purity22K, feed.PriceGram22K},
		{pricing.Purity18K, feed.PriceGram18K},
		{pricing.Purity14K, feed.PriceGram14K},
		{pricing.Purity10K, feed.PriceGram10K},
	}

	quotes := make([]RateQuote, 0, len(tiers))
	for _, tier := range tiers {
		if tier.price <= 0 {
			continue
		}
		quotes = append(quotes, RateQuote{
			Metal:       model.MetalGold,
			Purity:      tier.purity,
			RatePerGram: decimal.NewFromFloat(tier.price).Round(2),
		})
	}

	if len(quotes) == 0 {
		return nil, errors.New("rate feed returned no usable gram prices")
	}

	logger.Info("Fetched gold rates from feed", map[string]interface{}{
		"24K": feed.PriceGram24K,
		"22K": feed.PriceGram22K,
		"18K": feed.PriceGram18K,
	})

	return quotes, nil
}
