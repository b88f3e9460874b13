package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/models"
)

// BusySaving is the busy key while SaveAllMacros runs.
const BusySaving = "saving"

var ErrNotLoaded = errors.New("preferences not loaded")

type Gateway interface {
	Preferences(ctx context.Context, userID string) (models.UserPreferences, error)
	UpdateMacro(ctx context.Context, userID string, meal models.MealType, macro models.Macro, value float64) error
	UpdateDietaryRestriction(ctx context.Context, userID, name string, value bool) error
}

// Change is one macro target that differs from what the backend has.
type Change struct {
	Meal  models.MealType
	Macro models.Macro
	Value float64
}

func (c Change) Key() string {
	return string(c.Meal) + "-" + string(c.Macro)
}

// Controller buffers macro edits locally and flushes only what changed.
// Dietary restrictions are not buffered.
type Controller struct {
	gw     Gateway
	userID string

	mu            sync.Mutex
	loaded        bool
	authoritative models.UserPreferences
	pending       models.UserPreferences
	busyKey       string
}

func NewController(gw Gateway, userID string) *Controller {
	return &Controller{gw: gw, userID: userID}
}

// Load fetches the user's preferences. Until it succeeds the controller
// stays unloaded; there is no automatic retry.
func (c *Controller) Load(ctx context.Context) error {
	prefs, err := c.gw.Preferences(ctx, c.userID)
	if err != nil {
		logger.Error("fetching preferences", zap.String("user_id", c.userID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.authoritative = prefs
	c.pending = prefs
	c.loaded = true
	return nil
}

func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// StageMacro edits the pending target only.
func (c *Controller) StageMacro(meal models.MealType, macro models.Macro, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrNotLoaded
	}
	return c.pending.SetMacro(meal, macro, value)
}

// Diff lists the pending targets that differ from the backend's, in meal
// type then macro order.
func (c *Controller) Diff() []Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.diff()
}

func (c *Controller) diff() []Change {
	var changes []Change
	for _, meal := range models.AllMealTypes {
		for _, macro := range models.AllMacros {
			want, _ := c.pending.Macro(meal, macro)
			have, _ := c.authoritative.Macro(meal, macro)
			if want != have {
				changes = append(changes, Change{Meal: meal, Macro: macro, Value: want})
			}
		}
	}
	return changes
}

// SaveAllMacros sends each changed target as its own update, one after the
// other. Each confirmed field moves the authoritative copy forward; the first
// failure stops the remaining updates and is returned. It reports how many
// fields were saved.
func (c *Controller) SaveAllMacros(ctx context.Context) (int, error) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return 0, ErrNotLoaded
	}
	changes := c.diff()
	c.busyKey = BusySaving
	c.mu.Unlock()

	defer c.setBusy("")

	for i, ch := range changes {
		if err := c.gw.UpdateMacro(ctx, c.userID, ch.Meal, ch.Macro, ch.Value); err != nil {
			logger.Error("updating macro",
				zap.String("meal_type", string(ch.Meal)),
				zap.String("macro", string(ch.Macro)),
				zap.Float64("value", ch.Value),
				zap.Int("remaining", len(changes)-i-1),
				zap.Error(err),
			)
			return i, fmt.Errorf("saving %s %s: %w", ch.Meal, ch.Macro, err)
		}

		c.mu.Lock()
		_ = c.authoritative.SetMacro(ch.Meal, ch.Macro, ch.Value)
		c.mu.Unlock()
	}

	logger.Info("saved macro targets", zap.Int("fields", len(changes)))
	return len(changes), nil
}

// UpdateMacro saves a single target right away, bypassing the pending buffer.
func (c *Controller) UpdateMacro(ctx context.Context, meal models.MealType, macro models.Macro, value float64) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if _, err := c.authoritative.Macro(meal, macro); err != nil {
		c.mu.Unlock()
		return err
	}
	c.busyKey = Change{Meal: meal, Macro: macro}.Key()
	c.mu.Unlock()

	defer c.setBusy("")

	if err := c.gw.UpdateMacro(ctx, c.userID, meal, macro, value); err != nil {
		logger.Error("updating macro", zap.String("meal_type", string(meal)), zap.String("macro", string(macro)), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.authoritative.SetMacro(meal, macro, value)
	_ = c.pending.SetMacro(meal, macro, value)
	return nil
}

// ToggleDietaryRestriction saves a restriction right away.
func (c *Controller) ToggleDietaryRestriction(ctx context.Context, name string, value bool) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if _, err := c.authoritative.Restriction(name); err != nil {
		c.mu.Unlock()
		return err
	}
	c.busyKey = name
	c.mu.Unlock()

	defer c.setBusy("")

	if err := c.gw.UpdateDietaryRestriction(ctx, c.userID, name, value); err != nil {
		logger.Error("updating dietary restriction", zap.String("restriction", name), zap.Bool("value", value), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.authoritative.SetRestriction(name, value)
	_ = c.pending.SetRestriction(name, value)
	return nil
}

func (c *Controller) setBusy(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busyKey = key
}

// BusyKey names the update in flight: BusySaving, a restriction name, or
// "<Meal>-<Macro>". Empty when idle.
func (c *Controller) BusyKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busyKey
}

func (c *Controller) Authoritative() models.UserPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authoritative
}

func (c *Controller) Pending() models.UserPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}
