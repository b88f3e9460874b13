package models

import "fmt"

type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Brunch    MealType = "Brunch"
)

// AllMealTypes is the fixed order used when walking preferences.
var AllMealTypes = []MealType{Breakfast, Lunch, Dinner, Brunch}

func ParseMealType(s string) (MealType, error) {
	for _, m := range AllMealTypes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

type Macro string

const (
	Protein       Macro = "Protein"
	Carbohydrates Macro = "Carbohydrates"
	Fat           Macro = "Fat"
	Calories      Macro = "Calories"
)

var AllMacros = []Macro{Protein, Carbohydrates, Fat, Calories}

func ParseMacro(s string) (Macro, error) {
	for _, m := range AllMacros {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown macro %q", s)
}

// MacroInfo is one meal's worth of macro values.
type MacroInfo struct {
	Protein  float64
	Carbs    float64
	Fat      float64
	Calories float64
}

func (m MacroInfo) Get(macro Macro) float64 {
	switch macro {
	case Protein:
		return m.Protein
	case Carbohydrates:
		return m.Carbs
	case Fat:
		return m.Fat
	default:
		return m.Calories
	}
}
