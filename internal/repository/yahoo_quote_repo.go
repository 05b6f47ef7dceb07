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

	"golang.org/x/time/rate"
)

// QuoteRepository fetches a live quote from one upstream market-data source.
type QuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

// yahooSymbolMapping maps platform symbols to Yahoo Finance tickers.
var yahooSymbolMapping = map[string]string{
	"XAUUSD": "GC=F",
	"XAGUSD": "SI=F",
	"EURUSD": "EURUSD=X",
	"GBPUSD": "GBPUSD=X",
	"USDJPY": "JPY=X",
	"AUDUSD": "AUDUSD=X",
	"BTCUSD": "BTC-USD",
	"ETHUSD": "ETH-USD",
	"SOLUSD": "SOL-USD",
}

type yahooQuoteRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewYahooQuoteRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &yahooQuoteRepository{
		httpClient:     httpclient.New(cfg.MarketData.YahooBaseURL, cfg.MarketData.YahooTimeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *yahooQuoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	ticker := mapYahooTicker(symbol)
	endpoint := "/" + ticker

	queryParams := map[string]string{
		"interval": "1d",
		"range":    "1d",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, headers, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote from yahoo finance: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Yahoo Finance API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", chartResp.Chart.Error)
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", symbol)
	}

	meta := chartResp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("no market price available for symbol: %s", symbol)
	}

	changePct := 0.0
	if meta.ChartPreviousClose > 0 {
		changePct = (meta.RegularMarketPrice - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
	}

	return &dto.Quote{
		Symbol:    strings.ToUpper(symbol),
		Price:     meta.RegularMarketPrice,
		ChangePct: changePct,
		Timestamp: time.Now().UTC(),
	}, nil
}

func mapYahooTicker(symbol string) string {
	symbolUpper := strings.ToUpper(strings.TrimSpace(symbol))
	mappingKey := symbolUpper
	if !strings.HasSuffix(symbolUpper, ".CS") && strings.Contains(symbolUpper, "=") {
		mappingKey = strings.SplitN(symbolUpper, "=", 2)[0]
	}
	if ticker, ok := yahooSymbolMapping[mappingKey]; ok {
		return ticker
	}
	return symbolUpper
}
