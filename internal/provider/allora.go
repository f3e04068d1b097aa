package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"predtrack-go/internal/metrics"
)

const defaultAlloraBaseURL = "https://api.allora.network/v2/allora/consumer/price/ethereum-11155111"

// Allora fetches a normalized network prediction for a topic id from the
// Allora consumer endpoint. The adapter is read-only and side-effect-free
// beyond the network call.
type Allora struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	policy  Policy
	log     zerolog.Logger
}

type alloraResponse struct {
	Data struct {
		InferenceData struct {
			NetworkInferenceNormalized any `json:"network_inference_normalized"`
		} `json:"inference_data"`
	} `json:"data"`
}

// NewAllora constructs the prediction adapter. ratePerMin <= 0 disables
// client-side rate limiting.
func NewAllora(baseURL, apiKey string, policy Policy, ratePerMin int, log zerolog.Logger) *Allora {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultAlloraBaseURL
	}
	policy = policy.withDefaults()
	var limiter *rate.Limiter
	if ratePerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMin)/60), 1)
	}
	return &Allora{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: policy.Timeout + time.Second},
		limiter: limiter,
		policy:  policy,
		log:     log,
	}
}

// FetchPrediction returns the latest normalized prediction for the topic.
// ok is false when the provider answered but carried no usable value; a
// non-positive or unparsable prediction is "no data", never an error.
func (a *Allora) FetchPrediction(ctx context.Context, topicID int64) (float64, bool, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return 0, false, err
		}
	}
	url := fmt.Sprintf("%s?allora_topic_id=%d", a.baseURL, topicID)
	header := http.Header{}
	if a.apiKey != "" {
		header.Set("x-api-key", a.apiKey)
	}

	payload, err := WithRetry(ctx, a.policy, func(ctx context.Context) (alloraResponse, error) {
		metrics.FetchAttemptsTotal.WithLabelValues("allora").Inc()
		var out alloraResponse
		err := FetchJSON(ctx, a.client, url, header, a.policy.Timeout, &out)
		return out, err
	})
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues("allora").Inc()
		return 0, false, err
	}

	v, ok := numericValue(payload.Data.InferenceData.NetworkInferenceNormalized)
	if !ok || v <= 0 {
		a.log.Debug().Int64("topic", topicID).Msg("allora returned no usable prediction")
		return 0, false, nil
	}
	return v, true, nil
}

// numericValue coerces a JSON field that may arrive as a number or a numeric
// string. Non-finite values are rejected.
func numericValue(raw any) (float64, bool) {
	var v float64
	switch val := raw.(type) {
	case float64:
		v = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
