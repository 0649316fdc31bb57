package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/shekel-lab/ratewatch/internal/config"
	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/report"
	"github.com/shekel-lab/ratewatch/internal/service"
	"github.com/shekel-lab/ratewatch/internal/types"
)

func newService(cmd *cli.Command) (*service.Service, *config.Config, error) {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" && cfg.Sources.PolygonAPIKey == "" {
		cfg.Sources.PolygonAPIKey = key
	}

	svcLogger, err := logger.NewLogger()
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.FromConfig(cfg, svcLogger)
	if err != nil {
		return nil, nil, err
	}

	return svc, cfg, nil
}

// dashboardAction starts the interactive terminal dashboard.
func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	svc, cfg, err := newService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	refreshInterval := time.Duration(cfg.Dashboard.RefreshSeconds) * time.Second

	program := tea.NewProgram(NewModel(svc, refreshInterval), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

// analyzeAction runs one refresh cycle and prints the plain-text report.
func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	snapshot, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Print(report.Render(snapshot))

	if path := cmd.String("save"); path != "" && snapshot.Backtest != nil {
		if err := types.WriteResult(path, *snapshot.Backtest); err != nil {
			return err
		}

		fmt.Printf("\nBacktest result written to %s\n", path)
	}

	return nil
}

// fetchAction refreshes the local history store from the source chain.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	days := int(cmd.Int("days"))

	series, sourceName, err := svc.FetchHistorySeries(ctx, days)
	if err != nil {
		return err
	}

	if store := svc.History(); store != nil {
		bar := progressbar.NewOptions(len(series),
			progressbar.OptionSetDescription("Storing "+types.Pair),
			progressbar.OptionShowCount(),
		)

		for _, point := range series {
			if err := store.Upsert(types.Pair, types.RateSeries{point}); err != nil {
				return err
			}

			bar.Add(1)
		}

		bar.Finish()
		fmt.Println()
	}

	latest := series[len(series)-1]
	fmt.Printf("Stored %d observations from %s, latest %.4f (%s)\n",
		len(series), sourceName, latest.Rate, latest.Time.Format("2006-01-02"))

	return nil
}

// schemaAction prints the JSON schema of the configuration file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ratewatch",
		Usage: "USD/ILS exchange rate dashboard with crossover signals and backtesting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
		},
		Action: dashboardAction,
		Commands: []*cli.Command{
			{
				Name:   "dashboard",
				Usage:  "Open the interactive terminal dashboard",
				Action: dashboardAction,
			},
			{
				Name:  "analyze",
				Usage: "Run one analysis cycle and print the report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "save",
						Aliases: []string{"s"},
						Usage:   "Write the backtest result to this YAML file",
					},
				},
				Action: analyzeAction,
			},
			{
				Name:  "fetch",
				Usage: "Refresh the local history store from the sources",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "Trailing number of days to fetch",
						Value:   30,
					},
				},
				Action: fetchAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the configuration JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
