package schedule

import "time"

// BrowseDays is how far ahead of today a menu can be browsed.
const BrowseDays = 5

// DateLayout is the date format the backend expects in queries.
const DateLayout = "2006-01-02"

// DateRange is the browsable window of menu dates, today through
// today+BrowseDays, as calendar days in the evaluator's zone.
type DateRange struct {
	first time.Time
	last  time.Time
}

func (e *Evaluator) DateRange(now time.Time) DateRange {
	today := e.Day(now)
	return DateRange{first: today, last: today.AddDate(0, 0, BrowseDays)}
}

// Day truncates t to midnight in the evaluator's zone.
func (e *Evaluator) Day(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

// ParseDate reads a YYYY-MM-DD date as midnight in the evaluator's zone.
func (e *Evaluator) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, e.loc)
}

func (r DateRange) First() time.Time { return r.first }
func (r DateRange) Last() time.Time  { return r.last }

func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.first) && !d.After(r.last)
}

func (r DateRange) CanPrevious(d time.Time) bool {
	return d.After(r.first)
}

func (r DateRange) CanNext(d time.Time) bool {
	return d.Before(r.last)
}

// Previous steps back one day, staying on d at the start of the range.
func (r DateRange) Previous(d time.Time) time.Time {
	if !r.CanPrevious(d) {
		return d
	}
	return d.AddDate(0, 0, -1)
}

func (r DateRange) Next(d time.Time) time.Time {
	if !r.CanNext(d) {
		return d
	}
	return d.AddDate(0, 0, 1)
}
