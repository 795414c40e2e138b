package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"skyview/manager"
)

// Pipeline is the set of user intents the commands drive.
type Pipeline interface {
	Submit(ctx context.Context, text string) (*manager.WeatherView, error)
	PickSuggestion(ctx context.Context, place manager.Place) (*manager.WeatherView, error)
	UseMyLocation(ctx context.Context) (*manager.WeatherView, error)
	SetUnit(unit manager.UnitSystem)
	EditQuery(ctx context.Context, text string)
	Suggestions(ctx context.Context, text string) []manager.Place
	Snapshot() manager.State
	Subscribe(fn func(manager.State))
	Close()
}

func New(pipeline Pipeline) (*cobra.Command, error) {
	var (
		here   bool
		units  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "skyview [location]",
		Short: "Current weather and a five day forecast for a place name, postal code or \"lat, lon\"",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if units == "" {
				return nil
			}
			unit, err := manager.ParseUnitSystem(units)
			if err != nil {
				return err
			}
			pipeline.SetUnit(unit)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			var (
				view *manager.WeatherView
				err  error
			)
			switch {
			case here:
				view, err = pipeline.UseMyLocation(cmd.Context())
			case strings.TrimSpace(query) != "":
				view, err = pipeline.Submit(cmd.Context(), query)
			default:
				return cmd.Help()
			}
			if err != nil {
				return err
			}
			if view == nil {
				return errors.New("no weather available")
			}

			return render(cmd.OutOrStdout(), view, pipeline.Snapshot().Units, output)
		},
	}

	cmd.SilenceUsage = true
	cmd.PersistentFlags().StringVarP(&units, "units", "u", "", "unit system: metric or imperial")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&here, "here", false, "use the current device location")

	cmd.AddCommand(newSuggestCommand(pipeline), newInteractiveCommand(pipeline, &output))

	return cmd, nil
}

func newSuggestCommand(pipeline Pipeline) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "List up to five places matching text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			places := pipeline.Suggestions(cmd.Context(), strings.Join(args, " "))
			renderSuggestions(cmd.OutOrStdout(), places)
			return nil
		},
	}
}
