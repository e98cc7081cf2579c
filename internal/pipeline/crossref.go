package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
)

// ProgressFunc receives the number of restaurants checked so far.
type ProgressFunc func(checked, total int)

// Report is the outcome of a cross-reference run.
type Report struct {
	RunID  string
	Origin string
	Total  int
	// Clear lists restaurants with no congregation place nearby.
	Clear []model.ClearRestaurant
	// Skipped counts restaurants whose check failed.
	Skipped int
}

// CrossReference checks each restaurant for nearby congregation places.
type CrossReference struct {
	finder   PlaceFinder
	resolver geocode.Resolver
	progress ProgressFunc
}

// CrossReferenceOption configures a CrossReference.
type CrossReferenceOption func(*CrossReference)

// WithProgress sets a callback fired every ten restaurants and after the
// last one.
func WithProgress(fn ProgressFunc) CrossReferenceOption {
	return func(x *CrossReference) {
		x.progress = fn
	}
}

// NewCrossReference creates a CrossReference.
func NewCrossReference(finder PlaceFinder, resolver geocode.Resolver, opts ...CrossReferenceOption) *CrossReference {
	x := &CrossReference{finder: finder, resolver: resolver}
	for _, o := range opts {
		o(x)
	}
	return x
}

// Run checks restaurants in order and reports those with no congregation
// place nearby. A failed check is logged and counted, never fatal. When
// origin is set, the clear restaurants are re-resolved and ordered by their
// distance from it; an origin that does not resolve fails the run.
func (x *CrossReference) Run(ctx context.Context, restaurants []model.RestaurantCandidate, origin string) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Origin: strings.TrimSpace(origin),
		Total:  len(restaurants),
	}
	log := zap.L().With(zap.String("component", "pipeline.crossref"), zap.String("run_id", report.RunID))

	var originCoord geo.Coordinate
	if report.Origin != "" {
		c, err := x.resolver.Resolve(ctx, report.Origin)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: resolve origin %q", report.Origin)
		}
		originCoord = c
	}

	for i, r := range restaurants {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: cross-reference")
		}

		var (
			places []model.CongregationPlace
			err    error
		)
		if hasAddress(r) {
			places, err = x.finder.Find(ctx, r.Address)
		} else {
			err = eris.Wrapf(geocode.ErrAddressNotFound, "pipeline: no address for %q", r.Name)
		}
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, eris.Wrap(ctx.Err(), "pipeline: cross-reference")
		case err != nil:
			report.Skipped++
			log.Warn("skipping restaurant, check failed",
				zap.String("name", r.Name),
				zap.String("address", r.Address),
				zap.Error(err),
			)
		case len(places) == 0:
			report.Clear = append(report.Clear, model.ClearRestaurant{RestaurantCandidate: r})
		default:
			log.Debug("restaurant has congregation places nearby",
				zap.String("name", r.Name),
				zap.Int("places", len(places)),
				zap.String("nearest", places[0].Name),
			)
		}

		if n := i + 1; n%progressInterval == 0 || n == report.Total {
			log.Info("cross-reference progress", zap.Int("checked", n), zap.Int("total", report.Total))
			if x.progress != nil {
				x.progress(n, report.Total)
			}
		}
	}

	if report.Origin != "" {
		x.orderByOrigin(ctx, log, originCoord, report.Clear)
	}

	log.Info("cross-reference complete",
		zap.Int("total", report.Total),
		zap.Int("clear", len(report.Clear)),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// hasAddress reports whether a restaurant carries a usable address. A failed
// reverse lookup leaves the AddressUnavailable placeholder, which a fuzzy
// geocoder could still match to an unrelated point.
func hasAddress(r model.RestaurantCandidate) bool {
	a := strings.TrimSpace(r.Address)
	return a != "" && a != geocode.AddressUnavailable
}

// orderByOrigin resolves each clear restaurant's address again and sorts by
// distance from origin. Addresses that fail to resolve sort last.
func (x *CrossReference) orderByOrigin(ctx context.Context, log *zap.Logger, origin geo.Coordinate, rs []model.ClearRestaurant) {
	for i := range rs {
		c, err := x.resolver.Resolve(ctx, rs[i].Address)
		if err != nil {
			log.Warn("could not calculate distance from origin",
				zap.String("name", rs[i].Name),
				zap.Error(err),
			)
			continue
		}
		rs[i].OriginDistanceFeet = model.Float(geo.DistanceFeet(origin, c))
	}
	sortClearByOrigin(rs)
}
