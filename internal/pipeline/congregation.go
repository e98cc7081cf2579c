package pipeline

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/model"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/google"
)

// PlaceFinder lists congregation places near an address.
type PlaceFinder interface {
	Find(ctx context.Context, address string) ([]model.CongregationPlace, error)
}

// CongregationFinder finds places where minors congregate within
// Options.RadiusFeet of an address.
type CongregationFinder struct {
	resolver geocode.Resolver
	places   google.Client
	opts     Options
}

// NewCongregationFinder creates a CongregationFinder.
func NewCongregationFinder(resolver geocode.Resolver, places google.Client, opts Options) *CongregationFinder {
	return &CongregationFinder{resolver: resolver, places: places, opts: opts.clone()}
}

// Find resolves address and returns the congregation places around it,
// nearest first. A resolution failure fails the call.
func (f *CongregationFinder) Find(ctx context.Context, address string) ([]model.CongregationPlace, error) {
	center, err := f.resolver.Resolve(ctx, address)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: resolve %q", address)
	}
	return f.FindNear(ctx, center)
}

// FindNear returns the congregation places around an already-resolved center.
// Search errors degrade to empty results; only context cancellation fails.
func (f *CongregationFinder) FindNear(ctx context.Context, center geo.Coordinate) ([]model.CongregationPlace, error) {
	log := zap.L().With(zap.String("component", "pipeline.congregation"), zap.Stringer("center", center))
	radiusMeters := f.opts.RadiusMeters()

	seen := nameSet{}
	var candidates []model.CongregationPlace

	nearby, err := f.places.SearchNearby(ctx, google.NearbySearchRequest{
		Latitude:      center.Lat,
		Longitude:     center.Lon,
		RadiusMeters:  radiusMeters,
		IncludedTypes: f.opts.IncludedCategories,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: nearby search")
		}
		log.Warn("nearby search failed, continuing without it", zap.Error(err))
		nearby = &google.SearchResponse{}
	}
	for _, p := range nearby.Places {
		name := p.DisplayName.Text
		if strings.TrimSpace(name) == "" || seen.has(name) {
			continue
		}
		if hasAnyType(p.Types, f.opts.ExcludedCategories) {
			log.Debug("excluded by category", zap.String("name", name), zap.Strings("types", p.Types))
			continue
		}
		seen.add(name)
		candidates = append(candidates, toCongregationPlace(p, model.SourceNearby))
	}

	for _, keyword := range f.opts.Keywords {
		resp, err := f.places.TextSearch(ctx, google.TextSearchRequest{
			Query:        keyword,
			Latitude:     center.Lat,
			Longitude:    center.Lon,
			RadiusMeters: radiusMeters,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "pipeline: text search")
			}
			log.Warn("text search failed, skipping keyword", zap.String("keyword", keyword), zap.Error(err))
			continue
		}
		for _, p := range resp.Places {
			name := p.DisplayName.Text
			if strings.TrimSpace(name) == "" || seen.has(name) {
				continue
			}
			seen.add(name)
			if !ContainsKeyword(name, f.opts.Keywords) {
				continue
			}
			candidates = append(candidates, toCongregationPlace(p, model.SourceTextPrefix+keyword))
		}
	}

	results := make([]model.CongregationPlace, 0, len(candidates))
	for _, c := range candidates {
		if c.Location == nil {
			log.Debug("no location, dropping", zap.String("name", c.Name))
			continue
		}
		d := math.Round(geo.DistanceFeet(center, *c.Location))
		if !WithinRadius(d, f.opts.RadiusFeet) {
			continue
		}
		c.DistanceFeet = model.Float(d)
		results = append(results, c)
	}

	SortPlacesByDistance(results)
	log.Debug("congregation search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("within_radius", len(results)),
	)
	return results, nil
}

// toCongregationPlace normalizes a Places result.
func toCongregationPlace(p google.Place, source string) model.CongregationPlace {
	out := model.CongregationPlace{
		Name:    p.DisplayName.Text,
		Address: p.FormattedAddress,
		Types:   append([]string(nil), p.Types...),
		Source:  source,
		Website: p.WebsiteURI,
	}
	if p.Location != nil {
		c := geo.Coordinate{Lat: p.Location.Latitude, Lon: p.Location.Longitude}
		if c.Valid() {
			out.Location = &c
		}
	}
	return out
}
