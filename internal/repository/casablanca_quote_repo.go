package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prop-challenge/config"
	"prop-challenge/internal/dto"
	"prop-challenge/pkg/httpclient"
	"prop-challenge/pkg/logger"
)

// casablancaQuoteRepository serves .CS symbols from the Casablanca exchange
// upstream, which exposes a different API than the default source.
type casablancaQuoteRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

func NewCasablancaQuoteRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	return &casablancaQuoteRepository{
		httpClient: httpclient.New(cfg.MarketData.CasablancaBaseURL, cfg.MarketData.CasablancaTimeout),
		cfg:        cfg,
		logger:     log,
	}
}

func (r *casablancaQuoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbolUpper := strings.ToUpper(strings.TrimSpace(symbol))
	// Upstream indexes instruments without the exchange suffix.
	ticker := strings.TrimSuffix(symbolUpper, ".CS")

	var quoteResp dto.CasablancaQuoteResponse
	resp, err := r.httpClient.Get(ctx, "/quotes/"+ticker, nil, nil, &quoteResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote from casablanca exchange: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Casablanca exchange API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("casablanca exchange api returned status: %d", resp.StatusCode)
	}

	if quoteResp.Price <= 0 {
		return nil, fmt.Errorf("no market price available for symbol: %s", symbol)
	}

	return &dto.Quote{
		Symbol:    symbolUpper,
		Price:     quoteResp.Price,
		ChangePct: quoteResp.ChangePct,
		Timestamp: time.Now().UTC(),
	}, nil
}
