package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/aguxez/dine/models"
)

type call struct {
	meal  models.MealType
	macro models.Macro
	value float64
}

type fakeGateway struct {
	prefs      models.UserPreferences
	loadErr    error
	calls      []call
	failOn     int // 1-based call index that fails; 0 never
	toggles    []string
	toggleErr  error
	busySeen   []string
	controller *Controller
}

func (f *fakeGateway) Preferences(ctx context.Context, userID string) (models.UserPreferences, error) {
	return f.prefs, f.loadErr
}

func (f *fakeGateway) UpdateMacro(ctx context.Context, userID string, meal models.MealType, macro models.Macro, value float64) error {
	f.calls = append(f.calls, call{meal, macro, value})
	if f.controller != nil {
		f.busySeen = append(f.busySeen, f.controller.BusyKey())
	}
	if f.failOn == len(f.calls) {
		return errors.New("Bad Request")
	}
	return nil
}

func (f *fakeGateway) UpdateDietaryRestriction(ctx context.Context, userID, name string, value bool) error {
	f.toggles = append(f.toggles, name)
	if f.controller != nil {
		f.busySeen = append(f.busySeen, f.controller.BusyKey())
	}
	return f.toggleErr
}

func loaded(t *testing.T, gw *fakeGateway) *Controller {
	t.Helper()
	c := NewController(gw, "7")
	gw.controller = c
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c
}

func basePrefs() models.UserPreferences {
	var p models.UserPreferences
	for _, meal := range models.AllMealTypes {
		for _, macro := range models.AllMacros {
			_ = p.SetMacro(meal, macro, 10)
		}
	}
	return p
}

func TestLoadSetsBothSnapshots(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs()}
	c := loaded(t, gw)
	if c.Authoritative() != c.Pending() {
		t.Error("pending should equal authoritative after load")
	}
}

func TestLoadFailureStaysUnloaded(t *testing.T) {
	gw := &fakeGateway{loadErr: errors.New("down")}
	c := NewController(gw, "7")
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Loaded() {
		t.Error("should not be loaded")
	}
	if err := c.StageMacro(models.Lunch, models.Fat, 1); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("stage err = %v", err)
	}
	if _, err := c.SaveAllMacros(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("save err = %v", err)
	}
}

func TestSaveAllSendsOnlyChangesInOrder(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs()}
	c := loaded(t, gw)

	// Staged out of order on purpose.
	_ = c.StageMacro(models.Brunch, models.Calories, 900)
	_ = c.StageMacro(models.Breakfast, models.Fat, 12)
	_ = c.StageMacro(models.Dinner, models.Protein, 55)
	_ = c.StageMacro(models.Breakfast, models.Protein, 30)
	_ = c.StageMacro(models.Lunch, models.Carbohydrates, 10) // unchanged

	n, err := c.SaveAllMacros(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("save = %d, %v", n, err)
	}

	want := []call{
		{models.Breakfast, models.Protein, 30},
		{models.Breakfast, models.Fat, 12},
		{models.Dinner, models.Protein, 55},
		{models.Brunch, models.Calories, 900},
	}
	if len(gw.calls) != len(want) {
		t.Fatalf("calls = %+v", gw.calls)
	}
	for i := range want {
		if gw.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, gw.calls[i], want[i])
		}
	}
	for _, k := range gw.busySeen {
		if k != BusySaving {
			t.Errorf("busy key during save = %q", k)
		}
	}
	if c.Authoritative() != c.Pending() {
		t.Error("authoritative should equal pending after save")
	}
	if c.BusyKey() != "" {
		t.Errorf("busy key after save = %q", c.BusyKey())
	}
}

func TestSaveAllNoChanges(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs()}
	c := loaded(t, gw)
	_ = c.StageMacro(models.Lunch, models.Fat, 10)

	n, err := c.SaveAllMacros(context.Background())
	if err != nil || n != 0 || len(gw.calls) != 0 {
		t.Errorf("save = %d, %v, calls %v", n, err, gw.calls)
	}
	if c.Authoritative() != c.Pending() {
		t.Error("authoritative should equal pending")
	}
}

func TestSaveAllStopsAtFirstFailure(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs(), failOn: 2}
	c := loaded(t, gw)

	_ = c.StageMacro(models.Breakfast, models.Protein, 31)
	_ = c.StageMacro(models.Lunch, models.Protein, 32)
	_ = c.StageMacro(models.Dinner, models.Protein, 33)

	n, err := c.SaveAllMacros(context.Background())
	if err == nil || n != 1 {
		t.Fatalf("save = %d, %v", n, err)
	}
	if len(gw.calls) != 2 {
		t.Errorf("remaining saves should be aborted, calls = %+v", gw.calls)
	}

	auth := c.Authoritative()
	if auth.BreakfastProtein != 31 {
		t.Errorf("confirmed field not rolled forward: %v", auth.BreakfastProtein)
	}
	if auth.LunchProtein != 10 || auth.DinnerProtein != 10 {
		t.Errorf("unconfirmed fields rolled forward: %+v", auth)
	}

	// The unsaved edits are still pending and go out on the next save.
	gw.failOn = 0
	gw.calls = nil
	if _, err := c.SaveAllMacros(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(gw.calls) != 2 || gw.calls[0].meal != models.Lunch || gw.calls[1].meal != models.Dinner {
		t.Errorf("retry calls = %+v", gw.calls)
	}
}

func TestToggleDietaryRestriction(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs()}
	c := loaded(t, gw)

	if err := c.ToggleDietaryRestriction(context.Background(), models.RestrictionVegan, true); err != nil {
		t.Fatal(err)
	}
	if !c.Authoritative().IsVegan || !c.Pending().IsVegan {
		t.Error("restriction not applied")
	}
	if len(gw.busySeen) != 1 || gw.busySeen[0] != models.RestrictionVegan {
		t.Errorf("busy key = %v", gw.busySeen)
	}

	gw.toggleErr = errors.New("nope")
	if err := c.ToggleDietaryRestriction(context.Background(), models.RestrictionGlutenFree, true); err == nil {
		t.Fatal("expected error")
	}
	if c.Authoritative().IsGlutenFree {
		t.Error("failed toggle must not apply")
	}
	if c.BusyKey() != "" {
		t.Error("busy key not cleared")
	}

	if err := c.ToggleDietaryRestriction(context.Background(), "IsPaleo", true); err == nil {
		t.Error("unknown restriction accepted")
	}
}

func TestUpdateMacroImmediate(t *testing.T) {
	gw := &fakeGateway{prefs: basePrefs()}
	c := loaded(t, gw)

	if err := c.UpdateMacro(context.Background(), models.Lunch, models.Calories, 750); err != nil {
		t.Fatal(err)
	}
	if c.Authoritative().LunchCalories != 750 || c.Pending().LunchCalories != 750 {
		t.Error("macro not applied")
	}
	if gw.busySeen[0] != "Lunch-Calories" {
		t.Errorf("busy key = %q", gw.busySeen[0])
	}
	if len(c.Diff()) != 0 {
		t.Errorf("diff = %+v", c.Diff())
	}
}
