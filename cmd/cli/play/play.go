// Package play holds the commands that run games in the terminal.
package play

import (
	"os"

	"github.com/myrjola/murderai/cmd/cli/app"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "play",
	Title: "Playing",
}

func init() {
	Play.Flags().String("difficulty", "medium", "easy, medium or hard")
	Autoplay.Flags().String("difficulty", "medium", "easy, medium or hard")
	Autoplay.Flags().Int("max-steps", 20, "stop after this many turns") //nolint:mnd // enough to spend every point
	History.Flags().Int("limit", 10, "number of games to list")          //nolint:mnd // one screen
}

// open builds the engine with the logging set up by the root command.
func open(cmd *cobra.Command) (*app.App, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.Open(cmd.Context(), os.Environ(), app.NewLogger(cmd.ErrOrStderr(), verbose))
	if err != nil {
		return nil, errors.Wrap(err, "open app")
	}
	return a, nil
}

var Play = &cobra.Command{
	Use:     "play",
	GroupID: "play",
	Short:   "Play a case interactively",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")
		a, err := open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()
		snapshot, err := a.Engine.StartGame(cmd.Context(), difficulty)
		if err != nil {
			return errors.Wrap(err, "start game")
		}
		return REPL(cmd.Context(), a.Engine, snapshot.ID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var Autoplay = &cobra.Command{
	Use:     "autoplay",
	GroupID: "play",
	Short:   "Watch the AI detective solve a case",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		a, err := open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()
		snapshot, err := a.Engine.StartGame(cmd.Context(), difficulty)
		if err != nil {
			return errors.Wrap(err, "start game")
		}
		return Watch(cmd.Context(), a.Engine, snapshot.ID, maxSteps, cmd.OutOrStdout())
	},
}

var History = &cobra.Command{
	Use:     "history",
	GroupID: "play",
	Short:   "List archived games",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()
		games, err := a.Engine.RecentGames(cmd.Context(), limit)
		if err != nil {
			return errors.Wrap(err, "list games")
		}
		p := printer{w: cmd.OutOrStdout()}
		for _, g := range games {
			p.printf("%s  %-8s %-6s round %d, %2d pts  %s\n", g.OpenedAt.Format("2006-01-02 15:04"), g.Status, g.CaseKey,
				g.Round, g.Points, g.ID)
		}
		return nil
	},
}
