package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

type checkoutTestContext struct {
	catalogue *catalog.Catalogue
	deals     map[string]pricing.Deal
	session   *checkout.Checkout
	openErr   error
}

func (c *checkoutTestContext) reset() {
	c.catalogue = nil
	c.deals = map[string]pricing.Deal{}
	c.session = nil
	c.openErr = nil
}

func (c *checkoutTestContext) open() (*checkout.Checkout, error) {
	if c.session == nil && c.openErr == nil {
		c.session, c.openErr = checkout.NewWithDeals(c.catalogue, c.deals)
	}
	return c.session, c.openErr
}

func (c *checkoutTestContext) theReferenceCatalogue() error {
	c.catalogue = catalog.Default()
	return nil
}

func (c *checkoutTestContext) aDiscountDeal(sku string, threshold int, price string) error {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.deals[sku] = pricing.DiscountDeal{MinimumCount: threshold, DiscountPrice: d}
	return nil
}

func (c *checkoutTestContext) aFreeDeal(sku string, pay, bundle int) error {
	c.deals[sku] = pricing.FreeDeal{BundleSize: bundle, CountToPay: pay}
	return nil
}

func (c *checkoutTestContext) iScan(sku string) error {
	return c.iScanTimes(sku, 1)
}

func (c *checkoutTestContext) iScanTimes(sku string, n int) error {
	co, err := c.open()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		co.Scan(sku)
	}
	return nil
}

func (c *checkoutTestContext) theTotalIs(want string) error {
	co, err := c.open()
	if err != nil {
		return err
	}
	total, err := co.Total()
	if err != nil {
		return err
	}
	expected, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !expected.Equal(total) {
		return fmt.Errorf("expected total %s, got %s", expected.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func (c *checkoutTestContext) theTotalFailsWithUnknownSKU(sku string) error {
	co, err := c.open()
	if err != nil {
		return err
	}
	_, err = co.Total()
	if !errors.Is(err, catalog.ErrUnknownSKU) {
		return fmt.Errorf("expected unknown sku error, got %v", err)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("%q", sku)) {
		return fmt.Errorf("error %q does not name sku %q", err.Error(), sku)
	}
	return nil
}

func (c *checkoutTestContext) openingFailsWithInvalidDeal() error {
	_, err := c.open()
	if !errors.Is(err, pricing.ErrInvalidDeal) {
		return fmt.Errorf("expected invalid deal error, got %v", err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the reference catalogue$`, tc.theReferenceCatalogue)
	ctx.Step(`^a discount deal on "([^"]*)" above (\d+) units at ([0-9.]+)$`, tc.aDiscountDeal)
	ctx.Step(`^a free deal on "([^"]*)" paying (\d+) of every (\d+) units$`, tc.aFreeDeal)

	// When steps
	ctx.Step(`^I scan "([^"]*)"$`, tc.iScan)
	ctx.Step(`^I scan "([^"]*)" (\d+) times$`, tc.iScanTimes)

	// Then steps
	ctx.Step(`^the total is ([0-9.]+)$`, tc.theTotalIs)
	ctx.Step(`^the total fails with an unknown SKU error naming "([^"]*)"$`, tc.theTotalFailsWithUnknownSKU)
	ctx.Step(`^opening the checkout fails with an invalid deal error$`, tc.openingFailsWithInvalidDeal)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
