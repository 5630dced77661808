package maps

import (
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/logging"
)

// Strategy is one way of locating a live mapping library instance for an
// element. It reports false rather than failing when nothing is found.
type Strategy struct {
	// Name identifies the strategy in logs.
	Name string

	// Resolve attempts the lookup.
	Resolve func(el dom.Element) (Instance, bool)
}

// Resolver tries an ordered list of strategies until one yields an
// instance. A session that never resolves logs the miss once; every caller
// treats a miss as "degrade to CSS-only layout".
type Resolver struct {
	strategies []Strategy
	logger     *logging.Logger
	loggedMiss bool
}

// NewResolver creates a resolver over the given strategies, tried in order.
func NewResolver(logger *logging.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		logger:     logger,
	}
}

// Resolve locates an instance for the element. It returns false when no
// strategy succeeds; it never fails louder than that.
func (r *Resolver) Resolve(el dom.Element) (Instance, bool) {
	for _, s := range r.strategies {
		if inst, ok := s.Resolve(el); ok {
			r.logger.Debugf("map instance resolved via %s", s.Name)
			return inst, true
		}
	}
	if !r.loggedMiss {
		r.loggedMiss = true
		r.logger.Warnf("map instance unresolved after %d strategies, degrading to CSS-only layout", len(r.strategies))
	}
	return nil, false
}
