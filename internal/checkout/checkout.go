// Package checkout implements a point-of-sale checkout session that prices
// scanned SKUs against a product catalogue and a set of pricing deals.
//
// A Checkout is owned by a single caller and is not safe for concurrent use.
// Catalogues and rules are immutable and may be shared between sessions.
package checkout

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// ErrNoCatalogue is returned when a checkout is constructed without a catalogue.
var ErrNoCatalogue = errors.New("checkout: catalogue is required")

// Checkout accumulates scanned SKUs and prices them on demand.
type Checkout struct {
	id        uuid.UUID
	catalogue *catalog.Catalogue
	rules     pricing.Rules
	scans     []string
	logger    zerolog.Logger
	metrics   *obs.Metrics
}

// Option customises a Checkout.
type Option func(*Checkout)

// WithLogger attaches a logger. Sessions are silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Checkout) {
		c.logger = logger
	}
}

// WithMetrics records session activity on m.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Checkout) {
		c.metrics = m
	}
}

// New starts an empty session priced with rules against cat. Deal parameters
// are validated up front so that a bad rule fails here rather than at Total.
func New(cat *catalog.Catalogue, rules pricing.Rules, opts ...Option) (*Checkout, error) {
	return start(cat, rules, nil, opts)
}

// NewWithDeals behaves like New but takes the raw SKU to deal mapping.
func NewWithDeals(cat *catalog.Catalogue, deals map[string]pricing.Deal, opts ...Option) (*Checkout, error) {
	rules, err := pricing.NewRules(deals)
	return start(cat, rules, err, opts)
}

func start(cat *catalog.Catalogue, rules pricing.Rules, rulesErr error, opts []Option) (*Checkout, error) {
	c := &Checkout{
		id:        uuid.New(),
		catalogue: cat,
		rules:     rules,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With().Str("checkout_id", c.id.String()).Logger()

	err := rulesErr
	if err == nil {
		err = c.validate()
	}
	c.metrics.ObserveCreated(err)
	if err != nil {
		c.logger.Warn().Err(err).Msg("checkout rejected")
		return nil, err
	}
	c.logger.Debug().
		Int("products", cat.Len()).
		Str("rules", rules.String()).
		Msg("checkout created")
	return c, nil
}

func (c *Checkout) validate() error {
	if c.catalogue == nil {
		return ErrNoCatalogue
	}
	return c.rules.Validate()
}

// ID identifies the session.
func (c *Checkout) ID() uuid.UUID {
	return c.id
}

// Scan appends sku to the session. SKUs are checked against the catalogue only when pricing.
func (c *Checkout) Scan(sku string) {
	c.scans = append(c.scans, sku)
	c.metrics.ObserveScan()
}

// Len returns the number of scanned items.
func (c *Checkout) Len() int {
	return len(c.scans)
}

// Counts returns the scanned quantity per SKU.
func (c *Checkout) Counts() map[string]int {
	counts := make(map[string]int)
	for _, sku := range c.scans {
		counts[sku]++
	}
	return counts
}

// Total returns the price of every scanned item after deals, rounded to
// currency precision. It fails if any scanned SKU is missing from the catalogue.
func (c *Checkout) Total() (decimal.Decimal, error) {
	summary, err := c.Receipt()
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Total, nil
}

// Receipt prices the session and returns the per-SKU breakdown ordered by SKU.
func (c *Checkout) Receipt() (pricing.Summary, error) {
	counts := c.Counts()
	skus := make([]string, 0, len(counts))
	for sku := range counts {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	lines := make([]pricing.Line, 0, len(skus))
	for _, sku := range skus {
		product, err := c.catalogue.Lookup(sku)
		if err != nil {
			return pricing.Summary{}, err
		}
		line := pricing.Line{
			SKU:       sku,
			Name:      product.Name,
			Qty:       counts[sku],
			UnitPrice: product.Price,
		}
		if deal, ok := c.rules.Lookup(sku); ok {
			line.Deal = deal
		}
		lines = append(lines, line)
	}
	return pricing.Compute(lines), nil
}
