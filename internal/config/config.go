package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/safeplaces-cli/internal/geo"
	"github.com/sells-group/safeplaces-cli/internal/pipeline"
	"github.com/sells-group/safeplaces-cli/pkg/geocode"
	"github.com/sells-group/safeplaces-cli/pkg/google"
)

// Config holds the full application configuration.
type Config struct {
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Google Places API credentials.
type GoogleConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig configures the address resolver cascade.
type GeocodeConfig struct {
	CensusURL    string  `yaml:"census_url" mapstructure:"census_url"`
	ArcGISURL    string  `yaml:"arcgis_url" mapstructure:"arcgis_url"`
	NominatimURL string  `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	GoogleURL    string  `yaml:"google_url" mapstructure:"google_url"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	NominatimRPS float64 `yaml:"nominatim_rps" mapstructure:"nominatim_rps"`
}

// OverpassConfig configures the Overpass client and its retry policy.
type OverpassConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts    int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
}

// SearchConfig holds the search parameters.
type SearchConfig struct {
	RadiusFeet         float64  `yaml:"radius_feet" mapstructure:"radius_feet"`
	SearchRadiusMiles  float64  `yaml:"search_radius_miles" mapstructure:"search_radius_miles"`
	CountyRadiusMiles  float64  `yaml:"county_radius_miles" mapstructure:"county_radius_miles"`
	IncludedCategories []string `yaml:"included_categories" mapstructure:"included_categories"`
	ExcludedCategories []string `yaml:"excluded_categories" mapstructure:"excluded_categories"`
	Keywords           []string `yaml:"keywords" mapstructure:"keywords"`
	MaxResults         int      `yaml:"max_results" mapstructure:"max_results"`
}

// BoundaryConfig selects the county boundary. An empty File uses the
// embedded Shelby County outline.
type BoundaryConfig struct {
	Name           string  `yaml:"name" mapstructure:"name"`
	File           string  `yaml:"file" mapstructure:"file"`
	ShapefileField string  `yaml:"shapefile_field" mapstructure:"shapefile_field"`
	ShapefileValue string  `yaml:"shapefile_value" mapstructure:"shapefile_value"`
	FallbackLat    float64 `yaml:"fallback_lat" mapstructure:"fallback_lat"`
	FallbackLon    float64 `yaml:"fallback_lon" mapstructure:"fallback_lon"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEPLACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv can see it on Unmarshal.
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("geocode.census_url", geocode.DefaultCensusURL)
	v.SetDefault("geocode.arcgis_url", geocode.DefaultArcGISURL)
	v.SetDefault("geocode.nominatim_url", geocode.DefaultNominatimURL)
	v.SetDefault("geocode.google_url", geocode.DefaultGoogleURL)
	v.SetDefault("geocode.user_agent", "safeplaces-cli/1.0")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.nominatim_rps", 1.0)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("overpass.max_attempts", 3)
	v.SetDefault("overpass.retry_delay_secs", 5)
	v.SetDefault("search.radius_feet", pipeline.DefaultRadiusFeet)
	v.SetDefault("search.search_radius_miles", pipeline.DefaultSearchRadiusMiles)
	v.SetDefault("search.county_radius_miles", pipeline.DefaultCountyRadiusMiles)
	v.SetDefault("search.included_categories", pipeline.DefaultIncludedCategories)
	v.SetDefault("search.excluded_categories", pipeline.DefaultExcludedCategories)
	v.SetDefault("search.keywords", pipeline.DefaultKeywords)
	v.SetDefault("search.max_results", google.MaxResultCount)
	v.SetDefault("boundary.name", geo.DefaultBoundaryName)
	v.SetDefault("boundary.file", "")
	v.SetDefault("boundary.shapefile_field", "")
	v.SetDefault("boundary.shapefile_value", "")
	v.SetDefault("boundary.fallback_lat", geo.DefaultFallbackCenter.Lat)
	v.SetDefault("boundary.fallback_lon", geo.DefaultFallbackCenter.Lon)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given command. Modes "nearby"
// and "restaurants" need a Google API key; any other mode checks ranges only.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "nearby", "restaurants":
		if strings.TrimSpace(c.Google.Key) == "" {
			errs = append(errs, "google.key is required")
		}
	}

	if c.Search.RadiusFeet <= 0 {
		errs = append(errs, "search.radius_feet must be positive")
	}
	if c.Search.SearchRadiusMiles <= 0 {
		errs = append(errs, "search.search_radius_miles must be positive")
	}
	if c.Search.CountyRadiusMiles <= 0 {
		errs = append(errs, "search.county_radius_miles must be positive")
	}
	if len(c.Search.IncludedCategories) == 0 {
		errs = append(errs, "search.included_categories must not be empty")
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > google.MaxResultCount {
		errs = append(errs, "search.max_results must be between 1 and 20")
	}
	if c.Overpass.MaxAttempts < 1 {
		errs = append(errs, "overpass.max_attempts must be at least 1")
	}
	if c.Overpass.RetryDelaySecs < 0 {
		errs = append(errs, "overpass.retry_delay_secs must not be negative")
	}
	if c.Geocode.NominatimRPS <= 0 {
		errs = append(errs, "geocode.nominatim_rps must be positive")
	}
	if !c.fallbackCenter().Valid() {
		errs = append(errs, "boundary.fallback_lat/fallback_lon out of range")
	}
	if c.Boundary.File != "" {
		switch strings.ToLower(filepath.Ext(c.Boundary.File)) {
		case ".wkt", ".txt", ".geojson", ".json", ".shp":
		default:
			errs = append(errs, "boundary.file must be .wkt, .geojson, .json or .shp")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PipelineOptions returns the search parameters for the pipeline.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		RadiusFeet:         c.Search.RadiusFeet,
		SearchRadiusMiles:  c.Search.SearchRadiusMiles,
		CountyRadiusMiles:  c.Search.CountyRadiusMiles,
		IncludedCategories: append([]string(nil), c.Search.IncludedCategories...),
		ExcludedCategories: append([]string(nil), c.Search.ExcludedCategories...),
		Keywords:           append([]string(nil), c.Search.Keywords...),
	}
}

// LoadBoundary returns the configured boundary: the file when one is set,
// the embedded Shelby County outline otherwise.
func (c *Config) LoadBoundary() (*geo.Boundary, error) {
	if c.Boundary.File == "" {
		return geo.EmbeddedBoundary(c.Boundary.Name, c.fallbackCenter()), nil
	}
	name := c.Boundary.Name
	if name == "" {
		name = geo.DefaultBoundaryName
	}
	return geo.LoadBoundaryFile(c.Boundary.File, geo.LoadOptions{
		Name:     name,
		Field:    c.Boundary.ShapefileField,
		Value:    c.Boundary.ShapefileValue,
		Fallback: c.fallbackCenter(),
	})
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Google.Key != "" {
		out.Google.Key = "REDACTED"
	}
	return out
}

func (c *Config) fallbackCenter() geo.Coordinate {
	return geo.Coordinate{Lat: c.Boundary.FallbackLat, Lon: c.Boundary.FallbackLon}
}

// Seconds converts a whole-second setting to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
