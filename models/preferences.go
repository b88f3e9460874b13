package models

import "fmt"

// Dietary restriction names as the backend expects them.
const (
	RestrictionVegan      = "IsVegan"
	RestrictionVegetarian = "IsVegetarian"
	RestrictionGlutenFree = "IsGlutenFree"
)

var AllRestrictions = []string{RestrictionVegan, RestrictionVegetarian, RestrictionGlutenFree}

type UserPreferences struct {
	IsVegan      bool `json:"IsVegan"`
	IsVegetarian bool `json:"IsVegetarian"`
	IsGlutenFree bool `json:"IsGlutenFree"`

	BreakfastProtein       float64 `json:"BreakfastProtein"`
	BreakfastCarbohydrates float64 `json:"BreakfastCarbohydrates"`
	BreakfastFat           float64 `json:"BreakfastFat"`
	BreakfastCalories      float64 `json:"BreakfastCalories"`

	LunchProtein       float64 `json:"LunchProtein"`
	LunchCarbohydrates float64 `json:"LunchCarbohydrates"`
	LunchFat           float64 `json:"LunchFat"`
	LunchCalories      float64 `json:"LunchCalories"`

	DinnerProtein       float64 `json:"DinnerProtein"`
	DinnerCarbohydrates float64 `json:"DinnerCarbohydrates"`
	DinnerFat           float64 `json:"DinnerFat"`
	DinnerCalories      float64 `json:"DinnerCalories"`

	BrunchProtein       float64 `json:"BrunchProtein"`
	BrunchCarbohydrates float64 `json:"BrunchCarbohydrates"`
	BrunchFat           float64 `json:"BrunchFat"`
	BrunchCalories      float64 `json:"BrunchCalories"`
}

func (p *UserPreferences) macroField(meal MealType, macro Macro) (*float64, error) {
	var row [4]*float64
	switch meal {
	case Breakfast:
		row = [4]*float64{&p.BreakfastProtein, &p.BreakfastCarbohydrates, &p.BreakfastFat, &p.BreakfastCalories}
	case Lunch:
		row = [4]*float64{&p.LunchProtein, &p.LunchCarbohydrates, &p.LunchFat, &p.LunchCalories}
	case Dinner:
		row = [4]*float64{&p.DinnerProtein, &p.DinnerCarbohydrates, &p.DinnerFat, &p.DinnerCalories}
	case Brunch:
		row = [4]*float64{&p.BrunchProtein, &p.BrunchCarbohydrates, &p.BrunchFat, &p.BrunchCalories}
	default:
		return nil, fmt.Errorf("unknown meal type %q", meal)
	}

	for i, m := range AllMacros {
		if m == macro {
			return row[i], nil
		}
	}
	return nil, fmt.Errorf("unknown macro %q", macro)
}

// Macro returns the target for macro at meal.
func (p UserPreferences) Macro(meal MealType, macro Macro) (float64, error) {
	f, err := p.macroField(meal, macro)
	if err != nil {
		return 0, err
	}
	return *f, nil
}

func (p *UserPreferences) SetMacro(meal MealType, macro Macro, value float64) error {
	f, err := p.macroField(meal, macro)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Targets returns all four targets for one meal.
func (p UserPreferences) Targets(meal MealType) (MacroInfo, error) {
	var out MacroInfo
	var vals [4]float64
	for i, m := range AllMacros {
		v, err := p.Macro(meal, m)
		if err != nil {
			return out, err
		}
		vals[i] = v
	}
	return MacroInfo{Protein: vals[0], Carbs: vals[1], Fat: vals[2], Calories: vals[3]}, nil
}

func (p *UserPreferences) restrictionField(name string) (*bool, error) {
	switch name {
	case RestrictionVegan:
		return &p.IsVegan, nil
	case RestrictionVegetarian:
		return &p.IsVegetarian, nil
	case RestrictionGlutenFree:
		return &p.IsGlutenFree, nil
	}
	return nil, fmt.Errorf("unknown dietary restriction %q", name)
}

func (p UserPreferences) Restriction(name string) (bool, error) {
	f, err := p.restrictionField(name)
	if err != nil {
		return false, err
	}
	return *f, nil
}

func (p *UserPreferences) SetRestriction(name string, value bool) error {
	f, err := p.restrictionField(name)
	if err != nil {
		return err
	}
	*f = value
	return nil
}
