package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoteRepo struct {
	mu     sync.Mutex
	quotes map[string]float64
	err    error
	calls  int
}

func (f *fakeQuoteRepo) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	price, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &dto.Quote{Symbol: symbol, Price: price, Timestamp: time.Now().UTC()}, nil
}

func oracleConfig() *config.Config {
	cfg := &config.Config{}
	cfg.MarketData.QuoteTTL = 30 * time.Second
	cfg.MarketData.QuoteFailureTTL = 5 * time.Second
	return cfg
}

func newTestOracle(defaultRepo, casablancaRepo *fakeQuoteRepo) PriceOracle {
	return NewPriceOracle(
		oracleConfig(),
		newTestLogger(),
		cache.NewCache(time.Minute, time.Minute),
		defaultRepo,
		casablancaRepo,
	)
}

func TestPriceOracle_RoutesBySuffix(t *testing.T) {
	defaultRepo := &fakeQuoteRepo{quotes: map[string]float64{"BTCUSD": 64000}}
	casablancaRepo := &fakeQuoteRepo{quotes: map[string]float64{"IAM.CS": 12.5}}
	oracle := newTestOracle(defaultRepo, casablancaRepo)

	quote, err := oracle.GetQuote(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, 64000.0, quote.Price)
	assert.Equal(t, 1, defaultRepo.calls)
	assert.Equal(t, 0, casablancaRepo.calls)

	quote, err = oracle.GetQuote(context.Background(), "IAM.CS")
	require.NoError(t, err)
	assert.Equal(t, 12.5, quote.Price)
	assert.Equal(t, 1, casablancaRepo.calls)
	assert.Equal(t, 1, defaultRepo.calls)
}

func TestPriceOracle_CachesSuccessfulLookups(t *testing.T) {
	defaultRepo := &fakeQuoteRepo{quotes: map[string]float64{"EURUSD": 1.09}}
	oracle := newTestOracle(defaultRepo, &fakeQuoteRepo{})

	for i := 0; i < 3; i++ {
		quote, err := oracle.GetQuote(context.Background(), "eurusd")
		require.NoError(t, err)
		assert.Equal(t, 1.09, quote.Price)
	}

	assert.Equal(t, 1, defaultRepo.calls, "subsequent lookups must hit the cache")
}

func TestPriceOracle_CachesFailures(t *testing.T) {
	defaultRepo := &fakeQuoteRepo{err: errors.New("upstream down")}
	oracle := newTestOracle(defaultRepo, &fakeQuoteRepo{})

	for i := 0; i < 3; i++ {
		_, err := oracle.GetQuote(context.Background(), "XAUUSD")
		assert.ErrorIs(t, err, ErrPriceUnavailable)
	}

	assert.Equal(t, 1, defaultRepo.calls, "failures must not hammer the upstream")
}

func TestPriceOracle_RejectsEmptySymbol(t *testing.T) {
	oracle := newTestOracle(&fakeQuoteRepo{}, &fakeQuoteRepo{})

	_, err := oracle.GetQuote(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestPriceOracle_GetQuotesReturnsPartialResults(t *testing.T) {
	defaultRepo := &fakeQuoteRepo{quotes: map[string]float64{"BTCUSD": 64000, "ETHUSD": 3200}}
	casablancaRepo := &fakeQuoteRepo{quotes: map[string]float64{"ATW.CS": 480}}
	oracle := newTestOracle(defaultRepo, casablancaRepo)

	quotes := oracle.GetQuotes(context.Background(), []string{"BTCUSD", "ETHUSD", "ATW.CS", "MISSING", "btcusd"})

	require.Len(t, quotes, 3)
	assert.Equal(t, 64000.0, quotes["BTCUSD"].Price)
	assert.Equal(t, 3200.0, quotes["ETHUSD"].Price)
	assert.Equal(t, 480.0, quotes["ATW.CS"].Price)
	assert.NotContains(t, quotes, "MISSING")
}

func TestPriceOracle_GetQuotesEmptyInput(t *testing.T) {
	oracle := newTestOracle(&fakeQuoteRepo{}, &fakeQuoteRepo{})

	quotes := oracle.GetQuotes(context.Background(), nil)
	assert.Empty(t, quotes)
}
