package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type WindowSuite struct {
	suite.Suite
	now    time.Time
	window *Window
	ctx    context.Context
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowSuite))
}

func (s *WindowSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.window = NewWindow(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *WindowSuite) allow(key string) *Result {
	res, err := s.window.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	return res
}

func (s *WindowSuite) TestAllow() {
	s.Run("counts down to the limit", func() {
		for want := testLimit - 1; want >= 0; want-- {
			res := s.allow("ip:a")
			s.True(res.Allowed)
			s.Equal(want, res.Remaining)
		}
	})

	s.Run("denies over the limit", func() {
		res := s.allow("ip:a")
		s.False(res.Allowed)
		s.Equal(60, res.RetryAfter)
	})

	s.Run("keys are independent", func() {
		s.True(s.allow("ip:b").Allowed)
	})
}

func (s *WindowSuite) TestSlidingExpiry() {
	for range testLimit {
		s.allow("ip:a")
		s.now = s.now.Add(10 * time.Second)
	}
	s.False(s.allow("ip:a").Allowed)

	// the first request leaves the window at +60s
	s.now = s.now.Add(30 * time.Second)
	res := s.allow("ip:a")
	s.True(res.Allowed)
	s.Equal(0, res.Remaining)
}

func (s *WindowSuite) TestSweep() {
	s.allow("ip:a")
	s.allow("ip:b")
	s.now = s.now.Add(30 * time.Second)
	s.allow("ip:b")

	s.now = s.now.Add(45 * time.Second)
	s.Equal(1, s.window.Sweep(testWindow))
	s.Equal(1, s.window.Len())
}

func (s *WindowSuite) TestConcurrentCallers() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.window.Allow(s.ctx, "ip:c", testLimit, testWindow)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
