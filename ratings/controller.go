// Package ratings keeps the user's star ratings for the menu on display,
// applying edits optimistically and rolling them back when the backend
// refuses them.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/models"
)

const (
	MinStars = 1
	MaxStars = 5
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5 stars")

type Gateway interface {
	UserRating(ctx context.Context, userID string, itemID int) (int, error)
	SendReview(ctx context.Context, userID string, itemID, stars int) error
}

type itemState struct {
	authoritative    int
	hasAuthoritative bool
	pending          int
	hasPending       bool
	inflight         int
	// seq is bumped for every fetch or commit issued; only the response
	// carrying the latest seq may write authoritative.
	seq uint64
}

type snapshot struct {
	value int
	set   bool
}

type Controller struct {
	gw     Gateway
	userID string

	mu     sync.Mutex
	items  map[int]*itemState
	closed bool
}

func NewController(gw Gateway, userID string) *Controller {
	return &Controller{
		gw:     gw,
		userID: userID,
		items:  make(map[int]*itemState),
	}
}

func (c *Controller) state(itemID int) *itemState {
	st, ok := c.items[itemID]
	if !ok {
		st = &itemState{}
		c.items[itemID] = st
	}
	return st
}

// Hydrate fetches the user's rating for every item concurrently and returns
// once all fetches finished. A failed fetch leaves only its own item unset.
func (c *Controller) Hydrate(ctx context.Context, items []models.MenuItem) {
	var g errgroup.Group

	for _, item := range items {
		itemID := item.ID

		c.mu.Lock()
		st := c.state(itemID)
		st.seq++
		seq := st.seq
		c.mu.Unlock()

		g.Go(func() error {
			stars, err := c.gw.UserRating(ctx, c.userID, itemID)
			if err != nil {
				logger.Error("fetching rating", zap.Int("item_id", itemID), zap.Error(err))
				return nil
			}

			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed || c.items[itemID].seq != seq {
				logger.Debug("discarding stale rating", zap.Int("item_id", itemID))
				return nil
			}
			st := c.items[itemID]
			st.authoritative = stars
			st.hasAuthoritative = true
			return nil
		})
	}

	_ = g.Wait()
}

// Stage records an uncommitted rating for itemID, replacing any earlier one.
func (c *Controller) Stage(itemID, stars int) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, stars)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(itemID)
	st.pending = stars
	st.hasPending = true
	return nil
}

// Commit sends the staged rating for itemID. It reports false when nothing
// was staged. The new rating shows immediately; if the backend refuses it the
// rating in place before the commit is restored.
func (c *Controller) Commit(ctx context.Context, itemID int) (bool, error) {
	c.mu.Lock()
	st := c.state(itemID)
	if !st.hasPending || c.closed {
		c.mu.Unlock()
		return false, nil
	}

	stars := st.pending
	st.hasPending = false
	prev := snapshot{value: st.authoritative, set: st.hasAuthoritative}
	st.authoritative = stars
	st.hasAuthoritative = true
	st.inflight++
	st.seq++
	seq := st.seq
	c.mu.Unlock()

	err := c.gw.SendReview(ctx, c.userID, itemID, stars)

	c.mu.Lock()
	defer c.mu.Unlock()
	st.inflight--

	if err != nil {
		logger.Error("submitting rating", zap.Int("item_id", itemID), zap.Int("stars", stars), zap.Error(err))
		if !c.closed && st.seq == seq {
			st.authoritative = prev.value
			st.hasAuthoritative = prev.set
		}
		st.hasPending = false
		return true, err
	}

	logger.Info("rated item", zap.Int("item_id", itemID), zap.Int("stars", stars))
	return true, nil
}

// Rating is what the UI shows for itemID: the staged value, else the
// authoritative one, else 0.
func (c *Controller) Rating(itemID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.items[itemID]
	switch {
	case !ok:
		return 0
	case st.hasPending:
		return st.pending
	case st.hasAuthoritative:
		return st.authoritative
	}
	return 0
}

func (c *Controller) Authoritative(itemID int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.items[itemID]
	if !ok {
		return 0, false
	}
	return st.authoritative, st.hasAuthoritative
}

func (c *Controller) Pending(itemID int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.items[itemID]
	if !ok {
		return 0, false
	}
	return st.pending, st.hasPending
}

// Busy reports whether a commit for itemID is in flight.
func (c *Controller) Busy(itemID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.items[itemID]
	return ok && st.inflight > 0
}

// Close stops responses that arrive later from changing state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
