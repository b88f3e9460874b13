package models

import (
	"sync"
	"time"
)

// MenuBoard holds the menu currently on display: one date and meal type,
// its items, and the recommendations the backend computed for them.
type MenuBoard struct {
	mu              sync.RWMutex
	date            time.Time
	mealType        MealType
	items           []MenuItem
	recommendations []Recommendation
}

func (b *MenuBoard) Update(date time.Time, meal MealType, items []MenuItem, recs []Recommendation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.date = date
	b.mealType = meal
	b.items = items
	b.recommendations = recs
}

func (b *MenuBoard) Query() (time.Time, MealType) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.date, b.mealType
}

func (b *MenuBoard) Items() []MenuItem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.items
}

func (b *MenuBoard) Recommendations() []Recommendation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.recommendations
}

// Recommended returns the recommended items in recommendation order.
func (b *MenuBoard) Recommended() []MenuItem {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := make([]MenuItem, 0, len(b.recommendations))
	for _, r := range b.recommendations {
		items = append(items, r.Item)
	}
	return items
}

// Regular returns the menu items that are not recommended, in menu order.
func (b *MenuBoard) Regular() []MenuItem {
	b.mu.RLock()
	defer b.mu.RUnlock()

	recommended := make(map[int]struct{}, len(b.recommendations))
	for _, r := range b.recommendations {
		recommended[r.Item.ID] = struct{}{}
	}

	var items []MenuItem
	for _, it := range b.items {
		if _, ok := recommended[it.ID]; !ok {
			items = append(items, it)
		}
	}
	return items
}

// Totals reports the nutrition totals of the recommended meal. The backend
// repeats the same totals on every recommendation, so the first is used.
func (b *MenuBoard) Totals() (MacroInfo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.recommendations) == 0 {
		return MacroInfo{}, false
	}
	return b.recommendations[0].Totals(), true
}
