package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/menu"
	"github.com/aguxez/dine/models"
	"github.com/aguxez/dine/ratings"
	"github.com/aguxez/dine/schedule"
	"github.com/aguxez/dine/session"
	"github.com/aguxez/dine/tui"
)

var now = time.Now

// query resolves the --date and --meal flags against the browse window and
// the meals served that day.
func (a *app) query(date, meal string) (time.Time, models.MealType, error) {
	t := now()
	day := a.evaluator.Day(t)
	if date != "" {
		d, err := a.evaluator.ParseDate(date)
		if err != nil {
			return day, "", fmt.Errorf("invalid --date %q, want %s", date, schedule.DateLayout)
		}
		if r := a.evaluator.DateRange(t); !r.Contains(d) {
			return day, "", fmt.Errorf("%s is outside %s to %s", date,
				r.First().Format(schedule.DateLayout), r.Last().Format(schedule.DateLayout))
		}
		day = d
	}

	if meal == "" {
		mt := a.evaluator.DefaultMealType(t)
		if !a.evaluator.Offers(day, mt) {
			mt = a.evaluator.MealOptions(day)[0]
		}
		return day, mt, nil
	}

	mt, err := models.ParseMealType(meal)
	if err != nil {
		return day, "", err
	}
	if !a.evaluator.Offers(day, mt) {
		return day, "", fmt.Errorf("%s is not served on %s", mt, day.Format("Monday"))
	}
	return day, mt, nil
}

func (a *app) loadMenu(ctx context.Context, userID, date, meal string) (*menu.Service, error) {
	day, mt, err := a.query(date, meal)
	if err != nil {
		return nil, err
	}
	svc := menu.NewService(a.client, userID, &models.MenuBoard{})
	if err := svc.Load(ctx, day, mt); err != nil {
		return nil, err
	}
	return svc, nil
}

func (a *app) printMenu(w io.Writer, board *models.MenuBoard) {
	day, meal := board.Query()
	fmt.Fprintf(w, "%s\n", a.evaluator.Status(now()))
	fmt.Fprintf(w, "%s on %s: %s\n", meal, day.Format("Mon Jan 2"), a.evaluator.MealHours(meal, day))

	if totals, ok := board.Totals(); ok {
		fmt.Fprintf(w, "\nRecommended (P %.0fg, C %.0fg, F %.0fg, %.0f kcal)\n",
			totals.Protein, totals.Carbs, totals.Fat, totals.Calories)
		for _, it := range board.Recommended() {
			fmt.Fprintf(w, "  %4d  %s\n", it.ID, it)
		}
	}

	regular := board.Regular()
	if len(regular) > 0 {
		fmt.Fprintln(w, "\nMenu")
	}
	for _, it := range regular {
		fmt.Fprintf(w, "  %4d  %s\n", it.ID, it)
	}
	if len(board.Items()) == 0 {
		fmt.Fprintln(w, "\nNo items listed")
	}
}

func newMenuCommand(get func() *app) *cobra.Command {
	var (
		date  string
		meal  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the menu and your recommendations for a day and meal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, err := a.current()
			if err != nil {
				return err
			}

			svc, err := a.loadMenu(cmd.Context(), s.ID, date, meal)
			if err != nil {
				return err
			}
			a.printMenu(cmd.OutOrStdout(), svc.Board())
			if !watch {
				return nil
			}

			// Redraw the status line until interrupted.
			first := true
			schedule.Every(cmd.Context(), a.cfg.RefreshInterval, func(t time.Time) {
				if first {
					first = false
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", t.In(a.evaluator.Location()).Format(time.Kitchen), a.evaluator.Status(t))
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show ("+schedule.DateLayout+"), defaults to today")
	cmd.Flags().StringVar(&meal, "meal", "", "Breakfast, Lunch, Dinner or Brunch, defaults to the current meal")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep printing the open or closed status")
	return cmd
}

func newRateCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <itemId> <stars>",
		Short: "Rate a menu item from 1 to 5 stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			stars, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stars %q", args[1])
			}

			a := get()
			s, err := a.current()
			if err != nil {
				return err
			}

			ctrl := ratings.NewController(a.client, s.ID)
			defer ctrl.Close()
			if err := ctrl.Stage(itemID, stars); err != nil {
				return err
			}
			if _, err := ctrl.Commit(cmd.Context(), itemID); err != nil {
				return fmt.Errorf("rating not saved: %w", err)
			}
			logger.Info("rating saved", zap.Int("item_id", itemID), zap.Int("stars", stars))
			fmt.Fprintf(cmd.OutOrStdout(), "Rated item %d %d/%d\n", itemID, ctrl.Rating(itemID), ratings.MaxStars)
			return nil
		},
	}
}

func newNotificationsCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "List favorite dishes on upcoming menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, err := a.current()
			if err != nil {
				return err
			}
			items, err := a.client.Notifications(cmd.Context(), s.ID)
			if err != nil {
				return fmt.Errorf("loading notifications: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifications")
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "  %4d  %s\n", it.ID, it)
			}
			return nil
		},
	}
}

func newAdviseCommand(get func() *app) *cobra.Command {
	var date, meal string

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask the LLM for notes on today's recommended plate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, err := a.current()
			if err != nil {
				return err
			}
			adv, err := a.advisor()
			if err != nil {
				return err
			}
			if adv == nil {
				return fmt.Errorf("set OPENROUTER_API_KEY to enable advice")
			}

			svc, err := a.loadMenu(cmd.Context(), s.ID, date, meal)
			if err != nil {
				return err
			}
			prefs, err := a.client.Preferences(cmd.Context(), s.ID)
			if err != nil {
				return fmt.Errorf("loading preferences: %w", err)
			}
			_, mt := svc.Board().Query()
			targets, err := prefs.Targets(mt)
			if err != nil {
				return err
			}

			text, err := adv.Advise(cmd.Context(), mt, svc.Board().Recommendations(), targets)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to use ("+schedule.DateLayout+")")
	cmd.Flags().StringVar(&meal, "meal", "", "meal type to use")
	return cmd
}

func newTUICommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive menu browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, err := a.current()
			if err != nil {
				return err
			}
			return a.runTUI(cmd.Context(), s, a.persistent.Path())
		},
	}
}

func (a *app) runTUI(ctx context.Context, s session.Session, sessionPath string) error {
	adv, err := a.advisor()
	if err != nil {
		return err
	}
	if _, err := a.logToScreenFile(); err != nil {
		return err
	}
	return tui.Run(ctx, tui.Deps{
		Gateway:         a.client,
		Sessions:        a.sessions,
		Session:         s,
		Evaluator:       a.evaluator,
		Advisor:         adv,
		RefreshInterval: a.cfg.RefreshInterval,
	}, sessionPath)
}
