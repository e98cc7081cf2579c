package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/overpass"
)

// RestaurantCollector gathers named restaurants inside the boundary around an
// address, or around the boundary centroid when no address is given.
type RestaurantCollector struct {
	resolver geocode.Resolver
	reverser geocode.ReverseResolver
	overpass overpass.Client
	boundary *geo.Boundary
	opts     Options
}

// NewRestaurantCollector creates a RestaurantCollector.
func NewRestaurantCollector(
	resolver geocode.Resolver,
	reverser geocode.ReverseResolver,
	op overpass.Client,
	boundary *geo.Boundary,
	opts Options,
) *RestaurantCollector {
	return &RestaurantCollector{
		resolver: resolver,
		reverser: reverser,
		overpass: op,
		boundary: boundary,
		opts:     opts.clone(),
	}
}

// SearchArea returns the search center and radius in feet for address.
func (c *RestaurantCollector) SearchArea(ctx context.Context, address string) (geo.Coordinate, float64, error) {
	if strings.TrimSpace(address) == "" {
		return c.boundary.Centroid(), geo.MilesToFeet(c.opts.CountyRadiusMiles), nil
	}
	center, err := c.resolver.Resolve(ctx, address)
	if err != nil {
		return geo.Coordinate{}, 0, eris.Wrapf(err, "pipeline: resolve %q", address)
	}
	return center, geo.MilesToFeet(c.opts.SearchRadiusMiles), nil
}

// Collect returns the restaurants around address, nearest first. Only a
// resolution or Overpass failure fails the call; bad records are skipped.
func (c *RestaurantCollector) Collect(ctx context.Context, address string) ([]model.RestaurantCandidate, error) {
	center, radiusFeet, err := c.SearchArea(ctx, address)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("component", "pipeline.restaurants"),
		zap.Stringer("center", center),
		zap.Float64("radius_miles", geo.FeetToMiles(radiusFeet)),
	)

	resp, err := c.overpass.Query(ctx, overpass.RestaurantQuery(center, geo.FeetToMeters(radiusFeet)))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: restaurant query")
	}

	total := len(resp.Elements)
	log.Info("resolving restaurant addresses", zap.Int("elements", total))

	var out []model.RestaurantCandidate
	for i, el := range resp.Elements {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: collect restaurants")
		}
		if r, ok := c.candidate(ctx, log, center, el); ok {
			out = append(out, r)
		}
		if n := i + 1; n%progressInterval == 0 {
			log.Info("restaurant progress", zap.Int("processed", n), zap.Int("total", total))
		}
	}

	SortRestaurantsByDistance(out)
	log.Info("restaurants collected", zap.Int("kept", len(out)), zap.Int("elements", total))
	return out, nil
}

// candidate normalizes one Overpass element, reporting false when it is
// filtered out.
func (c *RestaurantCollector) candidate(ctx context.Context, log *zap.Logger, center geo.Coordinate, el overpass.Element) (model.RestaurantCandidate, bool) {
	name := strings.TrimSpace(el.Tag("name"))
	if name == "" {
		return model.RestaurantCandidate{}, false
	}
	elog := log.With(zap.String("name", name), zap.String("osm_type", el.Type), zap.Int64("osm_id", el.ID))

	loc, ok := el.Coordinate()
	if !ok || !loc.Valid() {
		elog.Warn("skipping restaurant without a usable coordinate")
		return model.RestaurantCandidate{}, false
	}
	if IsBarName(name) {
		elog.Debug("skipping bar")
		return model.RestaurantCandidate{}, false
	}
	if !c.boundary.Contains(loc) {
		elog.Debug("skipping restaurant outside boundary", zap.String("boundary", c.boundary.Name()))
		return model.RestaurantCandidate{}, false
	}

	r := model.RestaurantCandidate{
		Name:         name,
		Location:     loc,
		DistanceFeet: roundTenth(geo.DistanceFeet(center, loc)),
		OSMType:      el.Type,
		OSMID:        el.ID,
	}
	if addr, ok := ExtractOSMAddress(el.Tags); ok {
		r.Address, r.AddressSource = addr, model.AddressSourceOSM
	} else {
		r.Address, r.AddressSource = c.reverser.Reverse(ctx, loc), model.AddressSourceReverse
	}
	return r, true
}

// ExtractOSMAddress formats the addr:* tags as "number street, city, state
// postcode". All five parts must be present; the city may come from
// addr:city, addr:town or addr:village.
func ExtractOSMAddress(tags map[string]string) (string, bool) {
	city := firstNonEmpty(tags["addr:city"], tags["addr:town"], tags["addr:village"])
	parts := []string{
		tags["addr:housenumber"],
		tags["addr:street"],
		city,
		tags["addr:state"],
		tags["addr:postcode"],
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", false
		}
	}
	addr := parts[0] + " " + parts[1] + ", " + parts[2] + ", " + parts[3] + " " + parts[4]
	return strings.Join(strings.Fields(addr), " "), true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
