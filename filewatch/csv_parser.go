package filewatch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aguxez/dine/models"
)

// MacroTarget is one row of a macro targets sheet.
type MacroTarget struct {
	Meal   models.MealType
	Macros models.MacroInfo
}

var macroHeader = []string{"Meal Type", "Protein", "Carbohydrates", "Fat", "Calories"}

// ParseMacroTargets reads per-meal macro targets from CSV.
func ParseMacroTargets(path string) ([]MacroTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening targets file: %w", err)
	}
	defer f.Close()

	return ReadMacroTargets(f)
}

func ReadMacroTargets(in io.Reader) ([]MacroTarget, error) {
	r := csv.NewReader(in)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != len(macroHeader) {
		return nil, fmt.Errorf("invalid header length: expected %d columns, got %d", len(macroHeader), len(header))
	}
	for i, h := range header {
		if h != macroHeader[i] {
			return nil, fmt.Errorf("invalid header: expected %s at position %d, got %s", macroHeader[i], i, h)
		}
	}

	var targets []MacroTarget
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		meal, err := models.ParseMealType(record[0])
		if err != nil {
			return nil, err
		}

		var vals [4]float64
		for i := range vals {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %s for %s: %w", macroHeader[i+1], meal, err)
			}
			if v < 0 {
				return nil, fmt.Errorf("%s for %s must not be negative", macroHeader[i+1], meal)
			}
			vals[i] = v
		}

		targets = append(targets, MacroTarget{
			Meal: meal,
			Macros: models.MacroInfo{
				Protein:  vals[0],
				Carbs:    vals[1],
				Fat:      vals[2],
				Calories: vals[3],
			},
		})
	}

	return targets, nil
}
