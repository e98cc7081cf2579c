package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby <address...>",
	Short: "List kid-friendly places near an address",
	Long: `Resolves the address, searches nearby places by category and by keyword, and
prints every match within the configured radius ordered by distance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("nearby"); err != nil {
			return err
		}

		svc, err := newServices(cfg)
		if err != nil {
			return err
		}

		address := strings.Join(args, " ")
		places, err := svc.finder().Find(ctx, address)
		if err != nil {
			return err
		}

		zap.L().Info("nearby search complete",
			zap.String("address", address),
			zap.Int("places", len(places)),
		)
		return printPlaces(cmd.OutOrStdout(), address, places)
	},
}

func init() {
	rootCmd.AddCommand(nearbyCmd)
}
