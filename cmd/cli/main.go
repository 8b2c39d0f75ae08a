package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/myrjola/murderai/cmd/cli/cases"
	"github.com/myrjola/murderai/cmd/cli/mcp"
	"github.com/myrjola/murderai/cmd/cli/play"
	"github.com/myrjola/murderai/cmd/cli/portrait"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug output to stderr")
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Play, play.Autoplay, play.History)
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.Cases)
	rootCmd.AddGroup(portrait.Group)
	rootCmd.AddCommand(portrait.Generate)
	rootCmd.AddCommand(mcp.Serve)
}

var rootCmd = &cobra.Command{
	Use:           "murderai",
	Long:          `Solve murder mysteries by questioning AI suspects and spending points on forensic tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// A missing .env file is fine, the environment might be set up by other means.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "load .env")
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
