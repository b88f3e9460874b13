package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aguxez/dine/models"
)

func (c *Client) Preferences(ctx context.Context, userID string) (models.UserPreferences, error) {
	q := url.Values{"userId": {userID}}

	var prefs models.UserPreferences
	if err := c.Request(ctx, http.MethodGet, "/api/user-preferences/get-preferences?"+q.Encode(), nil).Decode(&prefs); err != nil {
		return models.UserPreferences{}, err
	}
	return prefs, nil
}

func (c *Client) UpdateDietaryRestriction(ctx context.Context, userID, name string, value bool) error {
	q := url.Values{
		"userId":           {userID},
		"restrictionName":  {name},
		"restrictionValue": {strconv.FormatBool(value)},
	}
	return c.Request(ctx, http.MethodPut, "/api/user-preferences/update-dietary-restriction?"+q.Encode(), nil).Error()
}

func (c *Client) UpdateMacro(ctx context.Context, userID string, meal models.MealType, macro models.Macro, value float64) error {
	q := url.Values{
		"userId":     {userID},
		"mealType":   {string(meal)},
		"macroName":  {string(macro)},
		"macroValue": {strconv.FormatFloat(value, 'f', -1, 64)},
	}
	return c.Request(ctx, http.MethodPut, "/api/user-preferences/update-macro?"+q.Encode(), nil).Error()
}
