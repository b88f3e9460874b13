package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aguxez/dine/models"
)

// MenuItems lists the items served on date (YYYY-MM-DD) for meal.
func (c *Client) MenuItems(ctx context.Context, date string, meal models.MealType) ([]models.MenuItem, error) {
	q := url.Values{"date": {date}, "type": {string(meal)}}

	var items []models.MenuItem
	if err := c.Request(ctx, http.MethodGet, "/api/menu-items?"+q.Encode(), nil).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Recommendations(ctx context.Context, userID, date string, meal models.MealType) ([]models.Recommendation, error) {
	q := url.Values{"userId": {userID}, "date": {date}, "mealType": {string(meal)}}

	var recs []models.Recommendation
	if err := c.Request(ctx, http.MethodGet, "/api/recommendations?"+q.Encode(), nil).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Notifications lists the items the backend flagged for the user.
func (c *Client) Notifications(ctx context.Context, userID string) ([]models.MenuItem, error) {
	q := url.Values{"userId": {userID}}

	var items []models.MenuItem
	if err := c.Request(ctx, http.MethodGet, "/api/get-notifications?"+q.Encode(), nil).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// UserRating returns the user's stars for an item, 0 when unrated.
func (c *Client) UserRating(ctx context.Context, userID string, itemID int) (int, error) {
	q := url.Values{"userId": {userID}}
	endpoint := fmt.Sprintf("/api/reviews/%d/user-rating?%s", itemID, q.Encode())

	var stars *int
	if err := c.Request(ctx, http.MethodGet, endpoint, nil).Decode(&stars); err != nil {
		return 0, err
	}
	if stars == nil {
		return 0, nil
	}
	return *stars, nil
}

func (c *Client) SendReview(ctx context.Context, userID string, itemID, stars int) error {
	q := url.Values{
		"menuItemId": {strconv.Itoa(itemID)},
		"userId":     {userID},
		"stars":      {strconv.Itoa(stars)},
	}
	endpoint := fmt.Sprintf("/api/reviews/%d?%s", itemID, q.Encode())

	return c.Request(ctx, http.MethodPost, endpoint, nil).Error()
}
