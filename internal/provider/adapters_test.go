package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestAlloraFetchPrediction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if got := r.URL.Query().Get("allora_topic_id"); got != "3" {
			t.Errorf("unexpected topic id %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"inference_data":{"network_inference_normalized":"67123.55"}}}`))
	}))
	defer server.Close()

	a := NewAllora(server.URL, "test-key", testPolicy(1), 0, zerolog.Nop())
	v, ok, err := a.FetchPrediction(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchPrediction returned error: %v", err)
	}
	if !ok || v != 67123.55 {
		t.Fatalf("unexpected prediction %v ok=%v", v, ok)
	}
}

func TestAlloraNoUsableValueIsNotAnError(t *testing.T) {
	bodies := []string{
		`{"data":{"inference_data":{}}}`,
		`{"data":{}}`,
		`{"data":{"inference_data":{"network_inference_normalized":"-12.5"}}}`,
		`{"data":{"inference_data":{"network_inference_normalized":"0"}}}`,
		`{"data":{"inference_data":{"network_inference_normalized":"garbage"}}}`,
	}
	for _, body := range bodies {
		body := body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		a := NewAllora(server.URL, "", testPolicy(0), 0, zerolog.Nop())
		v, ok, err := a.FetchPrediction(context.Background(), 1)
		server.Close()
		if err != nil {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
		if ok || v != 0 {
			t.Fatalf("body %s: expected no data, got %v ok=%v", body, v, ok)
		}
	}
}

func TestAlloraTransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	a := NewAllora(server.URL, "bad-key", testPolicy(1), 0, zerolog.Nop())
	if _, _, err := a.FetchPrediction(context.Background(), 1); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestCoinGeckoFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "ethereum" {
			t.Errorf("unexpected ids %q", got)
		}
		if got := r.URL.Query().Get("vs_currencies"); got != "usd" {
			t.Errorf("unexpected vs_currencies %q", got)
		}
		_, _ = w.Write([]byte(`{"ethereum":{"usd":50000.12}}`))
	}))
	defer server.Close()

	c := NewCoinGecko(server.URL, testPolicy(1), 0, zerolog.Nop())
	v, ok, err := c.FetchPrice(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("FetchPrice returned error: %v", err)
	}
	if !ok || v != 50000.12 {
		t.Fatalf("unexpected price %v ok=%v", v, ok)
	}
}

func TestCoinGeckoMissingCoinIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewCoinGecko(server.URL, testPolicy(0), 0, zerolog.Nop())
	v, ok, err := c.FetchPrice(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ok || v != 0 {
		t.Fatalf("expected no data, got %v ok=%v", v, ok)
	}
}
