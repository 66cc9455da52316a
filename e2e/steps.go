package e2e

import (
	"github.com/cucumber/godog"

	"maklarsystem/e2e/steps/bidding"
	"maklarsystem/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Listings, bids and status changes
	bidding.RegisterSteps(ctx, tc)
}
