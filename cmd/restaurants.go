package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/internal/pipeline"
)

var (
	restaurantsCheck bool
	restaurantsYes   bool
)

var restaurantsCmd = &cobra.Command{
	Use:   "restaurants [address...]",
	Short: "Find restaurants with no kid-friendly places nearby",
	Long: `Collects restaurants within the configured radius of an address, or inside
the county boundary when no address is given, then checks each one for nearby
kid-friendly places and prints the restaurants that have none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("restaurants"); err != nil {
			return err
		}

		svc, err := newServices(cfg)
		if err != nil {
			return err
		}

		address := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		restaurants, err := svc.collector().Collect(ctx, address)
		if err != nil {
			return err
		}
		printRestaurantCount(out, len(restaurants), address, svc.opts.SearchRadiusMiles, svc.boundary.Name())

		if !restaurantsCheck {
			return printRestaurants(out, restaurants)
		}
		if len(restaurants) == 0 {
			return nil
		}

		if !restaurantsYes {
			ok, err := confirm(cmd.InOrStdin(), out, "Continue checking each for kid-friendly nearby locations? (y/n)")
			if err != nil {
				return err
			}
			if !ok {
				_, err := fmt.Fprintln(out, "Process cancelled.")
				return err
			}
		}

		report, err := runCrossReference(ctx, svc, restaurants, address)
		if err != nil {
			return err
		}
		return printClearRestaurants(out, report)
	},
}

func init() {
	restaurantsCmd.Flags().BoolVar(&restaurantsCheck, "check", true, "check each restaurant for nearby kid-friendly places (false lists restaurants only)")
	restaurantsCmd.Flags().BoolVarP(&restaurantsYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(restaurantsCmd)
}

// runCrossReference checks every restaurant, showing a progress bar when
// stderr is a terminal.
func runCrossReference(ctx context.Context, svc *services, restaurants []model.RestaurantCandidate, origin string) (*pipeline.Report, error) {
	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(restaurants),
			progressbar.OptionSetDescription("Checking restaurants"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var opts []pipeline.CrossReferenceOption
	if bar != nil {
		opts = append(opts, pipeline.WithProgress(func(checked, _ int) {
			_ = bar.Set(checked)
		}))
	}

	xref := pipeline.NewCrossReference(svc.finder(), svc.geocoder, opts...)
	report, err := xref.Run(ctx, restaurants, origin)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("cross-reference complete",
		zap.String("run_id", report.RunID),
		zap.Int("restaurants", report.Total),
		zap.Int("clear", len(report.Clear)),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// confirm prints prompt and reports whether the answer starts with y.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt+" "); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, eris.Wrap(err, "read confirmation")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
