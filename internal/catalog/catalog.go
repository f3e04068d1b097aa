// Package catalog holds the static table of tracked instruments. The table is
// assembled once at startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Instrument identifies a tradable asset plus a prediction horizon. TopicID
// is assigned by the inference provider and is immutable; CoinID is the
// price provider's lookup key.
type Instrument struct {
	Symbol  string `yaml:"symbol"`
	Horizon string `yaml:"horizon"`
	TopicID int64  `yaml:"topic_id"`
	Display string `yaml:"display"`
	CoinID  string `yaml:"coin_id"`
}

// Key is the catalog lookup key, e.g. "ETH/10min".
func (i Instrument) Key() string {
	return i.Symbol + "/" + i.Horizon
}

// Catalog is a read-only instrument lookup table.
type Catalog struct {
	byKey   map[string]Instrument
	byTopic map[int64]Instrument
	keys    []string
}

// Defaults returns the built-in instrument set.
func Defaults() []Instrument {
	return []Instrument{
		{Symbol: "ETH", Horizon: "10min", TopicID: 1, Display: "ETH/USD 10min", CoinID: "ethereum"},
		{Symbol: "ETH", Horizon: "24h", TopicID: 2, Display: "ETH/USD 24h", CoinID: "ethereum"},
		{Symbol: "BTC", Horizon: "10min", TopicID: 3, Display: "BTC/USD 10min", CoinID: "bitcoin"},
		{Symbol: "BTC", Horizon: "24h", TopicID: 4, Display: "BTC/USD 24h", CoinID: "bitcoin"},
		{Symbol: "SOL", Horizon: "10min", TopicID: 5, Display: "SOL/USD 10min", CoinID: "solana"},
	}
}

// New builds a catalog from the given instruments. Later entries override
// earlier ones with the same key, so extras from configuration can replace
// built-ins. Entries missing a topic id or coin id are rejected.
func New(instruments ...Instrument) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]Instrument, len(instruments)),
		byTopic: make(map[int64]Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
		inst.Horizon = strings.TrimSpace(inst.Horizon)
		inst.CoinID = strings.ToLower(strings.TrimSpace(inst.CoinID))
		if inst.Symbol == "" || inst.Horizon == "" {
			return nil, fmt.Errorf("instrument missing symbol or horizon: %+v", inst)
		}
		if inst.TopicID <= 0 {
			return nil, fmt.Errorf("instrument %s: topic id must be positive", inst.Key())
		}
		if inst.CoinID == "" {
			return nil, fmt.Errorf("instrument %s: missing coin id", inst.Key())
		}
		if inst.Display == "" {
			inst.Display = inst.Symbol + "/USD " + inst.Horizon
		}
		c.byKey[inst.Key()] = inst
		c.byTopic[inst.TopicID] = inst
	}
	for key := range c.byKey {
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	return c, nil
}

// Get looks up an instrument by its "SYMBOL/horizon" key.
func (c *Catalog) Get(key string) (Instrument, bool) {
	inst, ok := c.byKey[normalizeKey(key)]
	return inst, ok
}

// ByTopic looks up an instrument by inference topic id.
func (c *Catalog) ByTopic(id int64) (Instrument, bool) {
	inst, ok := c.byTopic[id]
	return inst, ok
}

// Keys returns the sorted instrument keys.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// List returns the instruments in key order.
func (c *Catalog) List() []Instrument {
	out := make([]Instrument, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.byKey[key])
	}
	return out
}

func normalizeKey(key string) string {
	parts := strings.SplitN(strings.TrimSpace(key), "/", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(key)
	}
	return strings.ToUpper(strings.TrimSpace(parts[0])) + "/" + strings.TrimSpace(parts[1])
}
