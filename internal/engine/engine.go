// Package engine coordinates refresh cycles: it fans out to both providers,
// joins the results, reconciles them into time-aligned state, and writes
// prediction samples through to the durable store.
package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"predtrack-go/internal/catalog"
	"predtrack-go/internal/history"
	"predtrack-go/internal/metrics"
	"predtrack-go/internal/provider"
	"predtrack-go/internal/sample"
)

// PredictionSource yields a normalized prediction for a topic id. ok=false
// means the provider answered but carried no usable value.
type PredictionSource interface {
	FetchPrediction(ctx context.Context, topicID int64) (float64, bool, error)
}

// PriceSource yields a USD spot price for a coin id.
type PriceSource interface {
	FetchPrice(ctx context.Context, coinID string) (float64, bool, error)
}

const (
	msgFetching    = "Fetching latest data"
	msgUpdated     = "Data updated"
	msgNetwork     = "Network problem or provider timeout; keeping last known values"
	msgGeneric     = "Refresh failed; keeping last known values"
	msgNoSelection = "No instrument selected"
)

// Engine owns the in-memory reconciliation state. The volatile live-price
// history and derived metrics live here exclusively; durable prediction
// history is written through to the store, with the in-memory copy staying
// authoritative for the session.
type Engine struct {
	mu          sync.Mutex
	log         zerolog.Logger
	predictions PredictionSource
	prices      PriceSource
	store       history.Store
	cat         *catalog.Catalog

	instrument       catalog.Instrument
	selected         bool
	status           sample.Status
	latestPrediction *float64
	latestLive       *float64
	predHistory      *sample.History
	liveHistory      *sample.History

	now func() time.Time
}

// Snapshot is the read-only view exposed to consumers.
type Snapshot struct {
	Instrument        catalog.Instrument
	Instruments       []catalog.Instrument
	Status            sample.Status
	LatestPrediction  *float64
	LatestLive        *float64
	ChangePct         *float64
	PredictionHistory []sample.Sample
	LiveHistory       []sample.Sample
	Combined          []sample.Point
	SampleCount       int
}

// New assembles an engine. limit bounds both histories; zero means the
// default retention of 1000 samples.
func New(cat *catalog.Catalog, predictions PredictionSource, prices PriceSource, store history.Store, limit int, log zerolog.Logger) *Engine {
	return &Engine{
		log:         log,
		predictions: predictions,
		prices:      prices,
		store:       store,
		cat:         cat,
		status:      sample.Status{State: sample.StateOK, Message: msgNoSelection},
		predHistory: sample.NewHistory(limit),
		liveHistory: sample.NewHistory(limit),
		now:         time.Now,
	}
}

// SelectInstrument switches the tracked instrument: the volatile live-price
// history resets to empty, the new instrument's durable prediction history is
// loaded, and an immediate refresh cycle fires outside the regular cadence.
func (e *Engine) SelectInstrument(ctx context.Context, key string) error {
	inst, ok := e.cat.Get(key)
	if !ok {
		return errors.New("unknown instrument: " + key)
	}

	e.mu.Lock()
	e.instrument = inst
	e.selected = true
	e.latestPrediction = nil
	e.latestLive = nil
	e.liveHistory.Reset()
	e.predHistory.Replace(e.store.Load(inst.TopicID))
	e.publishGauges()
	e.mu.Unlock()

	e.log.Info().Str("instrument", inst.Key()).Int64("topic", inst.TopicID).Msg("instrument selected")
	e.RunCycle(ctx)
	return nil
}

// RunCycle performs one fetch-reconcile-persist-report pass. Both providers
// are queried concurrently and joined before any state mutation; a failure on
// either side routes the whole cycle to the error path, which preserves every
// previously known value.
func (e *Engine) RunCycle(ctx context.Context) {
	e.mu.Lock()
	if !e.selected {
		e.mu.Unlock()
		return
	}
	inst := e.instrument
	e.status = sample.Status{State: sample.StateLoading, Message: msgFetching}
	e.mu.Unlock()

	var (
		wg               sync.WaitGroup
		predV, liveV     float64
		predOK, liveOK   bool
		predErr, liveErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		predV, predOK, predErr = e.predictions.FetchPrediction(ctx, inst.TopicID)
	}()
	go func() {
		defer wg.Done()
		liveV, liveOK, liveErr = e.prices.FetchPrice(ctx, inst.CoinID)
	}()
	wg.Wait()

	if err := firstError(predErr, liveErr); err != nil {
		e.failCycle(inst, err)
		return
	}

	now := e.now().UnixMilli()

	e.mu.Lock()
	defer e.mu.Unlock()

	if predOK {
		v := predV
		e.latestPrediction = &v
		s := sample.Sample{T: now, V: predV}
		e.predHistory.Append(s)
		// Write-through; the in-memory copy stays authoritative even if
		// the durable write fails.
		e.store.Append(inst.TopicID, s)
	} else {
		e.latestPrediction = nil
	}

	if liveOK {
		v := liveV
		e.latestLive = &v
		e.liveHistory.Append(sample.Sample{T: now, V: liveV})
	} else {
		e.latestLive = nil
	}

	e.status = sample.Status{State: sample.StateOK, Message: msgUpdated}
	e.publishGauges()
	metrics.CyclesTotal.WithLabelValues("ok").Inc()
	e.log.Debug().
		Str("instrument", inst.Key()).
		Bool("prediction", predOK).
		Bool("live", liveOK).
		Msg("cycle complete")
}

func (e *Engine) failCycle(inst catalog.Instrument, err error) {
	msg := msgGeneric
	if isNetworkFlavored(err) {
		msg = msgNetwork
	}
	e.mu.Lock()
	e.status = sample.Status{State: sample.StateError, Message: msg}
	e.mu.Unlock()

	metrics.CyclesTotal.WithLabelValues("error").Inc()
	e.log.Warn().Err(err).Str("instrument", inst.Key()).Msg("cycle failed")
}

// ClearHistory removes the selected instrument's durable prediction history
// and empties the in-memory copy. Clearing when nothing is stored is fine.
func (e *Engine) ClearHistory() error {
	e.mu.Lock()
	if !e.selected {
		e.mu.Unlock()
		return nil
	}
	inst := e.instrument
	e.predHistory.Reset()
	e.publishGauges()
	e.mu.Unlock()

	if err := e.store.Clear(inst.TopicID); err != nil {
		e.log.Warn().Err(err).Int64("topic", inst.TopicID).Msg("durable clear failed")
		return err
	}
	return nil
}

// ExportCSV writes the prediction history as CSV.
func (e *Engine) ExportCSV(w io.Writer) error {
	e.mu.Lock()
	samples := e.predHistory.Snapshot()
	e.mu.Unlock()
	return sample.WriteCSV(w, samples)
}

// Snapshot returns a copy of the observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	pred := e.predHistory.Snapshot()
	live := e.liveHistory.Snapshot()
	return Snapshot{
		Instrument:        e.instrument,
		Instruments:       e.cat.List(),
		Status:            e.status,
		LatestPrediction:  copyFloat(e.latestPrediction),
		LatestLive:        copyFloat(e.latestLive),
		ChangePct:         sample.ChangePct(e.latestLive, e.latestPrediction),
		PredictionHistory: pred,
		LiveHistory:       live,
		Combined:          sample.Combine(live, pred),
		SampleCount:       len(pred),
	}
}

func (e *Engine) publishGauges() {
	metrics.HistorySize.WithLabelValues("prediction").Set(float64(e.predHistory.Len()))
	metrics.HistorySize.WithLabelValues("live").Set(float64(e.liveHistory.Len()))
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// isNetworkFlavored reuses the retry classification to distinguish transport
// trouble from everything else in the user-facing message, extended with the
// HTTP statuses the retry path would also have chased.
func isNetworkFlavored(err error) bool {
	if provider.Retryable(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such host") || strings.Contains(msg, "refused")
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
