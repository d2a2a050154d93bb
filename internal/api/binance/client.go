package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "cryptointel/internal/platform/http"
	"cryptointel/models"
)

const baseURL = "https://api.binance.com"

// Client fetches public candle data from Binance. No API key needed.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Binance public data client
func NewClient(options ClientOptions) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// GetCandles fetches klines for a symbol ("BTC" becomes "BTCUSDT").
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	pair := symbol
	if len(pair) < 5 || pair[len(pair)-4:] != "USDT" {
		pair = symbol + "USDT"
	}

	params := url.Values{}
	params.Add("symbol", pair)
	params.Add("interval", interval)
	params.Add("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())

	c.logger.Debug().Str("symbol", pair).Str("interval", interval).Msg("Fetching candles")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Each kline is a mixed-type array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty data returned")
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		candle, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("parsing kline: %w", err)
		}
		candles = append(candles, candle)
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parseKline(k []interface{}) (models.Candle, error) {
	openTime, ok := k[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("unexpected open time type %T", k[0])
	}

	values := make([]float64, 4)
	for i := 1; i <= 4; i++ {
		s, ok := k[i].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("unexpected price type %T", k[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, err
		}
		values[i-1] = v
	}

	volume := int64(0)
	if s, ok := k[5].(string); ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			volume = int64(v)
		}
	}

	return models.Candle{
		Datetime: time.UnixMilli(int64(openTime)).UTC().Format(time.RFC3339),
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   volume,
	}, nil
}
