package menu

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/models"
	"github.com/aguxez/dine/schedule"
)

type Gateway interface {
	MenuItems(ctx context.Context, date string, meal models.MealType) ([]models.MenuItem, error)
	Recommendations(ctx context.Context, userID, date string, meal models.MealType) ([]models.Recommendation, error)
}

// Service loads one (date, meal type) menu into a board.
type Service struct {
	gw     Gateway
	userID string
	board  *models.MenuBoard
}

func NewService(gw Gateway, userID string, board *models.MenuBoard) *Service {
	return &Service{gw: gw, userID: userID, board: board}
}

func (s *Service) Board() *models.MenuBoard {
	return s.board
}

// Menu is one fetched (date, meal type) menu.
type Menu struct {
	Date            time.Time
	Meal            models.MealType
	Items           []models.MenuItem
	Recommendations []models.Recommendation
}

// Fetch gets the menu and then the recommendations without touching the
// board. The menu is required; without recommendations every item is shown
// as regular.
func (s *Service) Fetch(ctx context.Context, date time.Time, meal models.MealType) (Menu, error) {
	day := date.Format(schedule.DateLayout)

	items, err := s.gw.MenuItems(ctx, day, meal)
	if err != nil {
		return Menu{}, fmt.Errorf("loading %s menu for %s: %w", meal, day, err)
	}

	recs, err := s.gw.Recommendations(ctx, s.userID, day, meal)
	if err != nil {
		logger.Warn("recommendations unavailable", zap.String("date", day), zap.String("meal_type", string(meal)), zap.Error(err))
		recs = nil
	}

	return Menu{Date: date, Meal: meal, Items: items, Recommendations: recs}, nil
}

// Apply stores a fetched menu in the board.
func (s *Service) Apply(mn Menu) {
	s.board.Update(mn.Date, mn.Meal, mn.Items, mn.Recommendations)
}

// Load is Fetch followed by Apply.
func (s *Service) Load(ctx context.Context, date time.Time, meal models.MealType) error {
	mn, err := s.Fetch(ctx, date, meal)
	if err != nil {
		return err
	}
	s.Apply(mn)
	return nil
}
