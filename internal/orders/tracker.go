package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

// startLoopsLocked launches the countdown and polling loops for generation
// gen. They outlive the request that started tracking and stop on reset or
// on a terminal status.
func (c *Controller) startLoopsLocked(ctx context.Context, gen uint64) {
	c.stopLoopsLocked()
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelLoops = cancel

	c.wg.Add(2)
	go c.runCountdown(loopCtx, gen)
	go c.runPolling(loopCtx, gen, c.orderID)
}

func (c *Controller) stopLoopsLocked() {
	if c.cancelLoops != nil {
		c.cancelLoops()
		c.cancelLoops = nil
	}
}

// runCountdown recomputes the remaining seconds on every tick and exits once
// it reaches zero. Reaching zero only disables actions; the server status
// decides the outcome.
func (c *Controller) runCountdown(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.gen != gen || c.state != StateTracking {
				c.mu.Unlock()
				return
			}
			c.refreshRemainingLocked()
			done := c.remaining == nil || *c.remaining == 0
			c.mu.Unlock()
			if done {
				c.logg.Debug(ctx, "countdown finished")
				return
			}
		}
	}
}

// runPolling fetches the order on every tick. Polls are not coalesced; each
// runs on its own goroutine and its result is dropped if it arrives late.
func (c *Controller) runPolling(ctx context.Context, gen uint64, orderID string) {
	defer c.wg.Done()

	ctx = c.logg.WithOrderID(ctx, orderID)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.wg.Add(1)
			go c.pollOnce(ctx, gen, orderID)
		}
	}
}

func (c *Controller) pollOnce(ctx context.Context, gen uint64, orderID string) {
	defer c.wg.Done()

	order, err := c.backend.GetOrder(ctx, orderapi.ID(orderID))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.metrics.IncPollFailure()
		c.logg.WarnErr(ctx, "order status poll failed, retrying next tick", err)
		return
	}

	c.mu.Lock()
	if c.gen != gen || c.state != StateTracking {
		c.mu.Unlock()
		return
	}
	effect := c.applyStatusLocked(order)
	c.mu.Unlock()
	effect(ctx)
}
