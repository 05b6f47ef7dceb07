package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/internal/repository"
	"prop-challenge/pkg/cache"
	"prop-challenge/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	keyQuote        = "quote:%s"
	keyQuoteFailure = "quote_failure:%s"

	casablancaSuffix = ".CS"

	maxQuoteFanOut = 8
)

// PriceOracle answers "what does this symbol trade at right now", or says it
// cannot. Symbols with the Casablanca suffix are routed to the exchange
// upstream, everything else to the default source. Successful lookups are
// cached with the configured TTL; failures are cached with a shorter TTL so
// a recovering upstream is retried quickly.
type PriceOracle interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
	// GetQuotes resolves a batch of symbols. Symbols without a price are
	// simply absent from the result; the evaluation path treats them as
	// contributing zero.
	GetQuotes(ctx context.Context, symbols []string) map[string]*dto.Quote
}

type priceOracle struct {
	cfg            *config.Config
	log            *logger.Logger
	quoteCache     cache.Cache
	defaultRepo    repository.QuoteRepository
	casablancaRepo repository.QuoteRepository
}

func NewPriceOracle(
	cfg *config.Config,
	log *logger.Logger,
	quoteCache cache.Cache,
	defaultRepo repository.QuoteRepository,
	casablancaRepo repository.QuoteRepository,
) PriceOracle {
	return &priceOracle{
		cfg:            cfg,
		log:            log,
		quoteCache:     quoteCache,
		defaultRepo:    defaultRepo,
		casablancaRepo: casablancaRepo,
	}
}

func (o *priceOracle) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbolUpper := strings.ToUpper(strings.TrimSpace(symbol))
	if symbolUpper == "" {
		return nil, ErrPriceUnavailable
	}

	if quote, ok := cache.GetTyped[*dto.Quote](o.quoteCache, fmt.Sprintf(keyQuote, symbolUpper)); ok {
		return quote, nil
	}
	if _, failed := o.quoteCache.Get(fmt.Sprintf(keyQuoteFailure, symbolUpper)); failed {
		return nil, ErrPriceUnavailable
	}

	repo := o.defaultRepo
	if strings.HasSuffix(symbolUpper, casablancaSuffix) {
		repo = o.casablancaRepo
	}

	quote, err := repo.GetQuote(ctx, symbolUpper)
	if err != nil {
		o.log.WarnContext(ctx, "Quote lookup failed",
			logger.StringField("symbol", symbolUpper),
			logger.ErrorField(err))
		o.quoteCache.Set(fmt.Sprintf(keyQuoteFailure, symbolUpper), true, o.cfg.MarketData.QuoteFailureTTL)
		return nil, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbolUpper)
	}

	o.quoteCache.Set(fmt.Sprintf(keyQuote, symbolUpper), quote, o.cfg.MarketData.QuoteTTL)
	return quote, nil
}

func (o *priceOracle) GetQuotes(ctx context.Context, symbols []string) map[string]*dto.Quote {
	result := make(map[string]*dto.Quote, len(symbols))
	if len(symbols) == 0 {
		return result
	}

	seen := make(map[string]bool, len(symbols))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQuoteFanOut)

	for _, symbol := range symbols {
		symbolUpper := strings.ToUpper(strings.TrimSpace(symbol))
		if symbolUpper == "" || seen[symbolUpper] {
			continue
		}
		seen[symbolUpper] = true

		g.Go(func() error {
			quote, err := o.GetQuote(gctx, symbolUpper)
			if err != nil {
				// Missing prices degrade to zero contribution, never an error.
				return nil
			}
			mu.Lock()
			result[symbolUpper] = quote
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return result
}
