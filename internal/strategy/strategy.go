// Package strategy defines the pluggable trading strategy abstraction and
// the built-in strategy variants. Strategies are deterministic: decisions
// are pure functions of the bar prefix up to and including the evaluated
// index, with no hidden state carried between calls.
package strategy

import (
	"sort"
	"sync"

	"github.com/yourorg/simulation-service/internal/model"
)

// Strategy evaluates entry and exit signals against already-seen bars.
// Implementations must only inspect bars[0..index]; looking past the
// evaluated index is forbidden.
type Strategy interface {
	// Name returns the human-readable strategy name
	Name() string

	// Params returns the effective configuration of this instance
	Params() map[string]float64

	// ShouldEnterLong reports a long entry signal at the given bar index
	ShouldEnterLong(bars []model.PriceBar, index int) bool

	// ShouldEnterShort reports a short entry signal at the given bar
	// index. The same signal closes an open long position.
	ShouldEnterShort(bars []model.PriceBar, index int) bool

	// PositionSize returns the notional value to commit to the next trade
	PositionSize(balance, riskPercent float64) float64
}

// baseStrategy provides the default position sizing shared by the
// built-in variants
type baseStrategy struct{}

// PositionSize is the default sizing rule: a fixed percentage of the
// current balance
func (baseStrategy) PositionSize(balance, riskPercent float64) float64 {
	return balance * riskPercent / 100
}

// Factory builds a strategy instance from a configuration map
type Factory func(params map[string]float64) (Strategy, error)

// ParamSpec describes one configurable strategy parameter
type ParamSpec struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

// Descriptor describes a registered strategy for the catalogue endpoint
type Descriptor struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamSpec `json:"parameters"`
}

// Registry maps strategy identifiers to factories. Registration replaces
// the runtime type dispatch of ad-hoc subclassing with an explicit,
// extensible lookup.
type Registry struct {
	mu          sync.RWMutex
	factories   map[string]Factory
	descriptors map[string]Descriptor
}

// NewRegistry creates a registry pre-populated with the built-in strategies
func NewRegistry() *Registry {
	r := &Registry{
		factories:   make(map[string]Factory),
		descriptors: make(map[string]Descriptor),
	}

	r.Register(maCrossDescriptor, NewMovingAverageCross)
	r.Register(rsiDescriptor, NewRSI)
	r.Register(breakoutDescriptor, NewBreakout)

	return r
}

// Register adds or replaces a strategy factory
func (r *Registry) Register(desc Descriptor, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[desc.ID] = factory
	r.descriptors[desc.ID] = desc
}

// Create instantiates a strategy by identifier
func (r *Registry) Create(id string, params map[string]float64) (Strategy, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()

	if !ok {
		return nil, model.NewConfigurationError("unknown strategy: %s", id)
	}

	return factory(params)
}

// List returns the descriptors of all registered strategies sorted by ID
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// intParam reads an integer parameter with a default, rejecting
// non-positive values
func intParam(params map[string]float64, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	n := int(v)
	if n <= 0 || float64(n) != v {
		return 0, model.NewConfigurationError("parameter %s must be a positive integer, got %v", key, v)
	}
	return n, nil
}

// floatParam reads a float parameter with a default
func floatParam(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
