package models

import "fmt"

type MenuItem struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fats         float64 `json:"fats"`
	Calories     float64 `json:"calories"`
	Vegan        bool    `json:"vegan"`
	Vegetarian   bool    `json:"vegetarian"`
	GlutenFree   bool    `json:"glutenFree"`
	OverallStars float64 `json:"overallStars"`
}

func (m MenuItem) Macros() MacroInfo {
	return MacroInfo{Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fats, Calories: m.Calories}
}

// Tags lists the dietary badges shown next to the item.
func (m MenuItem) Tags() []string {
	var tags []string
	if m.Vegan {
		tags = append(tags, "Vegan")
	}
	if m.Vegetarian {
		tags = append(tags, "Vegetarian")
	}
	if m.GlutenFree {
		tags = append(tags, "Gluten Free")
	}
	return tags
}

func (m MenuItem) String() string {
	return fmt.Sprintf("%s (P %.0fg, C %.0fg, F %.0fg, %.0f kcal)", m.Name, m.Protein, m.Carbs, m.Fats, m.Calories)
}

type Recommendation struct {
	Item          MenuItem `json:"item"`
	TotalProtein  float64  `json:"totalProtein"`
	TotalCarbs    float64  `json:"totalCarbs"`
	TotalFats     float64  `json:"totalFats"`
	TotalCalories float64  `json:"totalCalories"`
	ProteinMatch  float64  `json:"proteinMatch"`
	CarbsMatch    float64  `json:"carbsMatch"`
	FatsMatch     float64  `json:"fatsMatch"`
	CaloriesMatch float64  `json:"caloriesMatch"`
}

func (r Recommendation) Totals() MacroInfo {
	return MacroInfo{Protein: r.TotalProtein, Carbs: r.TotalCarbs, Fat: r.TotalFats, Calories: r.TotalCalories}
}

type CafeteriaStatus struct {
	IsOpen bool   `json:"isOpen"`
	Hours  string `json:"hours"`
}

func (s CafeteriaStatus) String() string {
	if !s.IsOpen {
		return "Cafeteria is Closed"
	}
	return "Cafeteria is Open (" + s.Hours + ")"
}
