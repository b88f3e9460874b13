package schedule

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/aguxez/dine/models"
)

// DayClass groups days that share the same meal service.
type DayClass int

const (
	Weekday DayClass = iota
	Saturday
	Sunday
)

func ClassOf(d time.Weekday) DayClass {
	switch d {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return Weekday
	}
}

// Slot is one meal service window in minutes since midnight, [Start, End).
type Slot struct {
	Meal  models.MealType
	Start int
	End   int
}

func (s Slot) Contains(minute int) bool {
	return minute >= s.Start && minute < s.End
}

func (s Slot) Hours() string {
	return clock(s.Start) + " - " + clock(s.End)
}

type day struct {
	slots []Slot
	// followClock picks the default meal by the latest slot that has started;
	// otherwise the first slot is always the default.
	followClock bool
}

var week = map[DayClass]day{
	Weekday: {
		slots: []Slot{
			{Meal: models.Breakfast, Start: 7 * 60, End: 10 * 60},
			{Meal: models.Lunch, Start: 11 * 60, End: 14 * 60},
			{Meal: models.Dinner, Start: 17 * 60, End: 20 * 60},
		},
		followClock: true,
	},
	Saturday: {
		slots: []Slot{
			{Meal: models.Brunch, Start: 10 * 60, End: 14 * 60},
		},
	},
	Sunday: {
		slots: []Slot{
			{Meal: models.Brunch, Start: 10 * 60, End: 14 * 60},
			{Meal: models.Dinner, Start: 17 * 60, End: 19 * 60},
		},
	},
}

// Slots returns the meal service of a day class in serving order.
func Slots(c DayClass) []Slot {
	return append([]Slot(nil), week[c].slots...)
}

// Evaluator answers schedule questions in one fixed time zone, so results do
// not depend on where the client runs.
type Evaluator struct {
	loc *time.Location
}

func NewEvaluator(tz string) (*Evaluator, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", tz, err)
	}
	return &Evaluator{loc: loc}, nil
}

func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// Status reports whether the cafeteria is serving at now.
func (e *Evaluator) Status(now time.Time) models.CafeteriaStatus {
	t := now.In(e.loc)
	minute := t.Hour()*60 + t.Minute()

	for _, s := range week[ClassOf(t.Weekday())].slots {
		if s.Contains(minute) {
			return models.CafeteriaStatus{IsOpen: true, Hours: s.Hours()}
		}
	}
	return models.CafeteriaStatus{}
}

// DefaultMealType is the meal preselected when the menu opens at now.
func (e *Evaluator) DefaultMealType(now time.Time) models.MealType {
	t := now.In(e.loc)
	d := week[ClassOf(t.Weekday())]
	meal := d.slots[0].Meal
	if !d.followClock {
		return meal
	}

	minute := t.Hour()*60 + t.Minute()
	for _, s := range d.slots {
		if s.Start <= minute {
			meal = s.Meal
		}
	}
	return meal
}

// MealOptions lists the meals served on date.
func (e *Evaluator) MealOptions(date time.Time) []models.MealType {
	slots := week[ClassOf(date.In(e.loc).Weekday())].slots
	meals := make([]models.MealType, 0, len(slots))
	for _, s := range slots {
		meals = append(meals, s.Meal)
	}
	return meals
}

// Offers reports whether meal is served on date.
func (e *Evaluator) Offers(date time.Time, meal models.MealType) bool {
	_, ok := e.slot(date, meal)
	return ok
}

// MealHours is the hours label for meal on date, empty when it is not served.
func (e *Evaluator) MealHours(meal models.MealType, date time.Time) string {
	s, ok := e.slot(date, meal)
	if !ok {
		return ""
	}
	return s.Hours()
}

func (e *Evaluator) slot(date time.Time, meal models.MealType) (Slot, bool) {
	for _, s := range week[ClassOf(date.In(e.loc).Weekday())].slots {
		if s.Meal == meal {
			return s, true
		}
	}
	return Slot{}, false
}

func clock(minute int) string {
	return time.Date(2000, 1, 1, minute/60, minute%60, 0, 0, time.UTC).Format("3:04 PM")
}
