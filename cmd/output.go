package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/internal/pipeline"
)

// printPlaces writes one block per congregation place.
func printPlaces(w io.Writer, address string, places []model.CongregationPlace) error {
	if len(places) == 0 {
		_, err := fmt.Fprintf(w, "No kid-friendly locations found near %s.\n", address)
		return err
	}

	for _, p := range places {
		fmt.Fprintf(w, "Place: %s\n", p.Name)
		fmt.Fprintf(w, "Address: %s\n", p.Address)
		fmt.Fprintf(w, "Types: %s\n", strings.Join(p.Types, ", "))
		if p.HasDistance() {
			fmt.Fprintf(w, "Distance: %.0f feet\n", *p.DistanceFeet)
		} else {
			fmt.Fprintln(w, "Distance: unknown")
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// printRestaurantCount writes the collection summary line.
func printRestaurantCount(w io.Writer, n int, address string, miles float64, boundary string) {
	if address != "" {
		fmt.Fprintf(w, "Found %d restaurants within %g miles of the provided address.\n", n, miles)
		return
	}
	county := boundary
	if i := strings.Index(county, ","); i > 0 {
		county = county[:i]
	}
	fmt.Fprintf(w, "Found %d restaurants inside %s.\n", n, county)
}

// printRestaurants writes the collected restaurants as a table.
func printRestaurants(w io.Writer, restaurants []model.RestaurantCandidate) error {
	if len(restaurants) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS\tSOURCE\tDISTANCE (FT)")
	for _, r := range restaurants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", r.Name, r.Address, r.AddressSource, r.DistanceFeet)
	}
	return tw.Flush()
}

// printClearRestaurants writes the restaurants with no congregation place
// nearby.
func printClearRestaurants(w io.Writer, report *pipeline.Report) error {
	if len(report.Clear) == 0 {
		_, err := fmt.Fprintln(w, "All restaurants have kid-friendly locations nearby.")
		return err
	}

	fmt.Fprintf(w, "\nRestaurants with no kid-friendly locations nearby (%d):\n\n", len(report.Clear))
	for _, r := range report.Clear {
		fmt.Fprintf(w, "Restaurant: %s\n", r.Name)
		fmt.Fprintf(w, "Address: %s\n", r.Address)
		if report.Origin != "" {
			if miles, ok := r.OriginDistanceMiles(); ok {
				fmt.Fprintf(w, "Distance from provided address: %.2f miles\n", miles)
			} else {
				fmt.Fprintln(w, "Distance from provided address: unavailable")
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if report.Skipped > 0 {
		fmt.Fprintf(w, "%d restaurants could not be checked.\n", report.Skipped)
	}
	return nil
}
