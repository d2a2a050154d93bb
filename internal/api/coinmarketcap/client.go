package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "cryptointel/internal/platform/http"
)

const baseURL = "https://pro-api.coinmarketcap.com/v1"

// Client is the CoinMarketCap API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new CoinMarketCap client
type ClientOptions struct {
	APIKey          string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new CoinMarketCap API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "coinmarketcap_client").Logger(),
	}
}

// Quote holds the USD quote for one cryptocurrency.
type Quote struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Symbol             string  `json:"symbol"`
	Price              float64 `json:"price"`
	Volume24h          float64 `json:"volume_24h"`
	PercentChange24h   float64 `json:"percent_change_24h"`
	PercentChange7d    float64 `json:"percent_change_7d"`
	MarketCap          float64 `json:"market_cap"`
	MarketCapDominance float64 `json:"market_cap_dominance"`
	LastUpdated        string  `json:"last_updated"`
}

// GlobalMetrics holds market-wide metrics.
type GlobalMetrics struct {
	TotalCryptocurrencies int     `json:"total_cryptocurrencies"`
	ActiveMarketPairs     int     `json:"active_market_pairs"`
	BTCDominance          float64 `json:"btc_dominance"`
	ETHDominance          float64 `json:"eth_dominance"`
	TotalMarketCap        float64 `json:"total_market_cap"`
	TotalVolume24h        float64 `json:"total_volume_24h"`
	LastUpdated           string  `json:"last_updated"`
}

type quotesResponse struct {
	Data map[string]struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Quote  map[string]struct {
			Price              float64 `json:"price"`
			Volume24h          float64 `json:"volume_24h"`
			PercentChange24h   float64 `json:"percent_change_24h"`
			PercentChange7d    float64 `json:"percent_change_7d"`
			MarketCap          float64 `json:"market_cap"`
			MarketCapDominance float64 `json:"market_cap_dominance"`
			LastUpdated        string  `json:"last_updated"`
		} `json:"quote"`
	} `json:"data"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

type globalMetricsResponse struct {
	Data struct {
		TotalCryptocurrencies int     `json:"total_cryptocurrencies"`
		ActiveMarketPairs     int     `json:"active_market_pairs"`
		BTCDominance          float64 `json:"btc_dominance"`
		ETHDominance          float64 `json:"eth_dominance"`
		Quote                 map[string]struct {
			TotalMarketCap float64 `json:"total_market_cap"`
			TotalVolume24h float64 `json:"total_volume_24h"`
			LastUpdated    string  `json:"last_updated"`
		} `json:"quote"`
	} `json:"data"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// CleanSymbol strips a pair suffix ("BTC/USDT" -> "BTC") and uppercases.
func CleanSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(strings.SplitN(symbol, "/", 2)[0]))
}

// GetQuote fetches the latest USD quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	clean := CleanSymbol(symbol)

	endpoint := fmt.Sprintf(
		"%s/cryptocurrency/quotes/latest?symbol=%s&convert=USD",
		c.baseURL,
		url.QueryEscape(clean),
	)

	var data quotesResponse
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	if data.Status.ErrorCode != 0 {
		c.logger.Error().Str("message", data.Status.ErrorMessage).Msg("CoinMarketCap API error")
		return nil, fmt.Errorf("CoinMarketCap API error: %s", data.Status.ErrorMessage)
	}

	crypto, ok := data.Data[clean]
	if !ok {
		return nil, fmt.Errorf("no data for symbol %s", clean)
	}
	usd, ok := crypto.Quote["USD"]
	if !ok {
		return nil, fmt.Errorf("no USD quote for symbol %s", clean)
	}

	c.logger.Debug().Str("symbol", clean).Float64("price", usd.Price).Msg("Fetched quote")

	return &Quote{
		ID:                 crypto.ID,
		Name:               crypto.Name,
		Symbol:             crypto.Symbol,
		Price:              usd.Price,
		Volume24h:          usd.Volume24h,
		PercentChange24h:   usd.PercentChange24h,
		PercentChange7d:    usd.PercentChange7d,
		MarketCap:          usd.MarketCap,
		MarketCapDominance: usd.MarketCapDominance,
		LastUpdated:        usd.LastUpdated,
	}, nil
}

// GetGlobalMetrics fetches market-wide metrics
func (c *Client) GetGlobalMetrics(ctx context.Context) (*GlobalMetrics, error) {
	endpoint := c.baseURL + "/global-metrics/quotes/latest"

	var data globalMetricsResponse
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	if data.Status.ErrorCode != 0 {
		c.logger.Error().Str("message", data.Status.ErrorMessage).Msg("CoinMarketCap API error")
		return nil, fmt.Errorf("CoinMarketCap API error: %s", data.Status.ErrorMessage)
	}

	usd, ok := data.Data.Quote["USD"]
	if !ok {
		return nil, fmt.Errorf("no USD quote in global metrics")
	}

	return &GlobalMetrics{
		TotalCryptocurrencies: data.Data.TotalCryptocurrencies,
		ActiveMarketPairs:     data.Data.ActiveMarketPairs,
		BTCDominance:          data.Data.BTCDominance,
		ETHDominance:          data.Data.ETHDominance,
		TotalMarketCap:        usd.TotalMarketCap,
		TotalVolume24h:        usd.TotalVolume24h,
		LastUpdated:           usd.LastUpdated,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}

	return nil
}
