package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/naka-gawa/star-trend/internal/config"
	"github.com/naka-gawa/star-trend/internal/gateway"
	"github.com/naka-gawa/star-trend/internal/render"
	"github.com/naka-gawa/star-trend/internal/store"
	"github.com/naka-gawa/star-trend/internal/usecase"
	"github.com/spf13/cobra"
)

var trendCmd = &cobra.Command{
	Use:   "trend OWNER/NAME",
	Short: "Shows repository statistics and the star trend",
	Long: `Fetches the repository metadata and its full stargazer history, then
prints the repository card, the star statistics and the cumulative and daily
star series as a table, JSON or an HTML page with charts.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		owner, name, err := parseRepository(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath, cmd.Flags())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		// Inject dependencies and run the main business logic.
		provider, err := gateway.NewGitHubGateway(cfg.Token, gateway.Options{
			EnterpriseURL: cfg.EnterpriseURL,
			PageSize:      cfg.PageSize,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		st := store.New()
		panel := usecase.NewPanel(provider, st, logger)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		// A failed section is shown as an error in the output; only give up
		// when neither section produced anything.
		if err := panel.Refresh(ctx, owner, name); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			if nothingLoaded(st.Snapshot()) {
				os.Exit(1)
			}
		}

		view, err := panel.View(time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build view: %v\n", err)
			os.Exit(1)
		}

		if err := writeView(cfg, view); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().StringP("format", "f", config.DefaultFormat, "Output format: table, json or html")
	trendCmd.Flags().StringP("output", "o", "", "Write output to this file instead of stdout")
	trendCmd.Flags().Int("page-size", config.DefaultPageSize, "Stargazers fetched per GraphQL request (1-100)")
}

// parseRepository splits "owner/name".
func parseRepository(arg string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSuffix(arg, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository must be given as OWNER/NAME, got %q", arg)
	}
	return owner, name, nil
}

func nothingLoaded(state store.State) bool {
	return state.Status[store.KeyRepoStats].Phase == store.PhaseFailed &&
		state.Status[store.KeyStarData].Phase == store.PhaseFailed
}

func writeView(cfg *config.Config, view *usecase.View) (err error) {
	var w io.Writer = os.Stdout
	if cfg.Output != "" {
		f, createErr := os.Create(cfg.Output)
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", cfg.Output, createErr)
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		w = f
	}
	return render.Write(cfg.Format, w, view)
}
