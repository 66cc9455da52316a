package bidding

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	PATCH(path string, body interface{}) error
	GET(path string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	Set(name, value string)
	Get(name string) (string, bool)
}

const listingVar = "listing"

// RegisterSteps registers bidding step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &biddingSteps{tc: tc}

	ctx.Step(`^a listing open for bids$`, steps.newListing)
	ctx.Step(`^bidder "([^"]*)" bids (\d+) SEK$`, steps.placeBid)
	ctx.Step(`^I remember the bid as "([^"]*)"$`, steps.rememberBid)
	ctx.Step(`^I (accept|reject|withdraw) bid "([^"]*)"$`, steps.changeStatus)
	ctx.Step(`^I request the highest bid$`, steps.requestHighest)
	ctx.Step(`^I list the bids$`, steps.listBids)

	ctx.Step(`^bid "([^"]*)" should have status "([^"]*)"$`, steps.bidShouldHaveStatus)
	ctx.Step(`^the listing should have (\d+) bids$`, steps.listingShouldHaveBids)
}

type biddingSteps struct {
	tc TestContext
}

var statusFor = map[string]string{
	"accept":   "accepterat",
	"reject":   "avslaget",
	"withdraw": "tillbakadraget",
}

func (s *biddingSteps) listing() (string, error) {
	id, ok := s.tc.Get(listingVar)
	if !ok {
		return "", fmt.Errorf("no listing in scenario; add %q first", "a listing open for bids")
	}
	return id, nil
}

func (s *biddingSteps) newListing(ctx context.Context) error {
	s.tc.Set(listingVar, uuid.NewString())
	return nil
}

// bidderID keeps one stable uuid per bidder name within a scenario.
func (s *biddingSteps) bidderID(name string) string {
	key := "bidder:" + name
	if id, ok := s.tc.Get(key); ok {
		return id
	}
	id := uuid.NewString()
	s.tc.Set(key, id)
	return id
}

func (s *biddingSteps) placeBid(ctx context.Context, bidder string, amount int) error {
	listing, err := s.listing()
	if err != nil {
		return err
	}
	return s.tc.POST("/listings/"+listing+"/bids", map[string]interface{}{
		"spekulant_id": s.bidderID(bidder),
		"belopp":       amount,
	})
}

func (s *biddingSteps) rememberBid(ctx context.Context, name string) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Set("bid:"+name, fmt.Sprint(id))
	return nil
}

func (s *biddingSteps) bidID(name string) (string, error) {
	id, ok := s.tc.Get("bid:" + name)
	if !ok {
		return "", fmt.Errorf("unknown bid %q", name)
	}
	return id, nil
}

func (s *biddingSteps) changeStatus(ctx context.Context, action, name string) error {
	id, err := s.bidID(name)
	if err != nil {
		return err
	}
	return s.tc.PATCH("/bids/"+id, map[string]string{"status": statusFor[action]})
}

func (s *biddingSteps) requestHighest(ctx context.Context) error {
	listing, err := s.listing()
	if err != nil {
		return err
	}
	return s.tc.GET("/listings/" + listing + "/bids/highest")
}

func (s *biddingSteps) listBids(ctx context.Context) error {
	listing, err := s.listing()
	if err != nil {
		return err
	}
	return s.tc.GET("/listings/" + listing + "/bids?includeWithdrawn=true&sortOrder=asc")
}

func (s *biddingSteps) bidShouldHaveStatus(ctx context.Context, name, want string) error {
	id, err := s.bidID(name)
	if err != nil {
		return err
	}
	if err := s.listBids(ctx); err != nil {
		return err
	}
	bids, err := s.tc.GetResponseField("bud")
	if err != nil {
		return err
	}
	list, _ := bids.([]interface{})
	for _, b := range list {
		bid, _ := b.(map[string]interface{})
		if bid["id"] == id {
			if bid["status"] != want {
				return fmt.Errorf("bid %s: expected status %q, got %v", name, want, bid["status"])
			}
			return nil
		}
	}
	return fmt.Errorf("bid %s not in listing history", name)
}

func (s *biddingSteps) listingShouldHaveBids(ctx context.Context, want int) error {
	if err := s.listBids(ctx); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("antal")
	if err != nil {
		return err
	}
	if n, ok := got.(float64); !ok || int(n) != want {
		return fmt.Errorf("expected %d bids, got %v", want, got)
	}
	return nil
}
