package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aguxez/dine/filewatch"
	"github.com/aguxez/dine/models"
	"github.com/aguxez/dine/preferences"
)

// prefsController loads the signed in user's preferences.
func (a *app) prefsController(cmd *cobra.Command) (*preferences.Controller, error) {
	s, err := a.current()
	if err != nil {
		return nil, err
	}
	ctrl := preferences.NewController(a.client, s.ID)
	if err := ctrl.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	return ctrl, nil
}

func printPreferences(w io.Writer, p models.UserPreferences) {
	fmt.Fprintln(w, "Dietary restrictions")
	for _, name := range models.AllRestrictions {
		on, _ := p.Restriction(name)
		mark := " "
		if on {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, name)
	}

	fmt.Fprintf(w, "\n%-10s", "Meal")
	for _, m := range models.AllMacros {
		fmt.Fprintf(w, " %14s", m)
	}
	fmt.Fprintln(w)
	for _, meal := range models.AllMealTypes {
		t, _ := p.Targets(meal)
		fmt.Fprintf(w, "%-10s", meal)
		for _, m := range models.AllMacros {
			fmt.Fprintf(w, " %14.0f", t.Get(m))
		}
		fmt.Fprintln(w)
	}
}

func newProfileCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit dietary restrictions and macro targets",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print your preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := get().prefsController(cmd)
			if err != nil {
				return err
			}
			printPreferences(cmd.OutOrStdout(), ctrl.Authoritative())
			return nil
		},
	}

	setMacro := &cobra.Command{
		Use:   "set-macro <meal> <macro> <value>",
		Short: "Save one macro target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			meal, err := models.ParseMealType(args[0])
			if err != nil {
				return err
			}
			macro, err := models.ParseMacro(args[1])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil || value < 0 {
				return fmt.Errorf("invalid value %q", args[2])
			}

			ctrl, err := get().prefsController(cmd)
			if err != nil {
				return err
			}
			if err := ctrl.UpdateMacro(cmd.Context(), meal, macro, value); err != nil {
				return fmt.Errorf("saving %s %s: %w", meal, macro, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s set to %s\n", meal, macro, args[2])
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <restriction>",
		Short: "Flip a dietary restriction (" + strings.Join(models.AllRestrictions, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := get().prefsController(cmd)
			if err != nil {
				return err
			}
			on, err := ctrl.Authoritative().Restriction(args[0])
			if err != nil {
				return err
			}
			if err := ctrl.ToggleDietaryRestriction(cmd.Context(), args[0], !on); err != nil {
				return fmt.Errorf("updating %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %t\n", args[0], !on)
			return nil
		},
	}

	imp := &cobra.Command{
		Use:   "import <csv>",
		Short: "Stage macro targets from a CSV file and save the ones that changed",
		Long: "The file needs the header\n\n  Meal Type,Protein,Carbohydrates,Fat,Calories\n\n" +
			"followed by one row per meal type. Only values that differ from the\n" +
			"saved ones are sent, in order, stopping at the first failure.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := filewatch.ParseMacroTargets(args[0])
			if err != nil {
				return err
			}
			ctrl, err := get().prefsController(cmd)
			if err != nil {
				return err
			}
			for _, t := range targets {
				for _, m := range models.AllMacros {
					if err := ctrl.StageMacro(t.Meal, m, t.Macros.Get(m)); err != nil {
						return err
					}
				}
			}

			saved, err := ctrl.SaveAllMacros(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d macro targets\n", saved)
			if err != nil {
				return err
			}
			if left := len(ctrl.Diff()); left > 0 {
				return fmt.Errorf("%d changes were not saved", left)
			}
			return nil
		},
	}

	cmd.AddCommand(show, setMacro, toggle, imp)
	return cmd
}
