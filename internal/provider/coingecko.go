package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"predtrack-go/internal/metrics"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches a USD spot price for a coin id from the public
// simple-price endpoint.
type CoinGecko struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	policy  Policy
	log     zerolog.Logger
}

// NewCoinGecko constructs the spot-price adapter.
func NewCoinGecko(baseURL string, policy Policy, ratePerMin int, log zerolog.Logger) *CoinGecko {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultCoinGeckoBaseURL
	}
	policy = policy.withDefaults()
	var limiter *rate.Limiter
	if ratePerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMin)/60), 1)
	}
	return &CoinGecko{
		baseURL: baseURL,
		client:  &http.Client{Timeout: policy.Timeout + time.Second},
		limiter: limiter,
		policy:  policy,
		log:     log,
	}
}

// FetchPrice returns the current USD price for the coin. ok is false when
// the response carried no usable number for the coin.
func (c *CoinGecko) FetchPrice(ctx context.Context, coinID string) (float64, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, false, err
		}
	}
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(coinID))

	payload, err := WithRetry(ctx, c.policy, func(ctx context.Context) (map[string]map[string]any, error) {
		metrics.FetchAttemptsTotal.WithLabelValues("coingecko").Inc()
		out := make(map[string]map[string]any)
		err := FetchJSON(ctx, c.client, endpoint, nil, c.policy.Timeout, &out)
		return out, err
	})
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues("coingecko").Inc()
		return 0, false, err
	}

	v, ok := numericValue(payload[coinID]["usd"])
	if !ok || v <= 0 {
		c.log.Debug().Str("coin", coinID).Msg("coingecko returned no usable price")
		return 0, false, nil
	}
	return v, true, nil
}
