// Package catalog maps the short measurement names used on the command line
// to backup file headers, database columns, labels and units.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

const (
	WS2000 = "ws2000"
	DHT22  = "dht22"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Catalog is the column layout of one kind of station.
type Catalog struct {
	Name       string `mapstructure:"name"`
	Table      string `mapstructure:"table"`
	TimeColumn string `mapstructure:"time_column"`
	// StationColumn, when set, holds the id of the station that sent the row.
	StationColumn string              `mapstructure:"station_column"`
	Measurements  []types.Measurement `mapstructure:"measurements"`
}

func (c *Catalog) Lookup(key string) (types.Measurement, bool) {
	for _, m := range c.Measurements {
		if m.Key == key {
			return m, true
		}
	}
	return types.Measurement{}, false
}

// Keys returns the known short names, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.Measurements))
	for _, m := range c.Measurements {
		out = append(out, m.Key)
	}
	sort.Strings(out)
	return out
}

// Resolve looks up every key, failing with a usage error that lists the
// known names when one is not in the catalog.
func (c *Catalog) Resolve(keys []string) ([]types.Measurement, error) {
	out := make([]types.Measurement, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		m, ok := c.Lookup(k)
		if !ok {
			return nil, &types.UsageError{Msg: fmt.Sprintf("%q is not a known data type; must be one of: %s", k, strings.Join(c.Keys(), ", "))}
		}
		out = append(out, m)
	}
	return out, nil
}

// Validate checks the fields that end up in SQL statements and that keys are
// unique.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("catalog name is required")
	}
	if !identRe.MatchString(c.Table) {
		return fmt.Errorf("catalog %s: invalid table name %q", c.Name, c.Table)
	}
	if !identRe.MatchString(c.TimeColumn) {
		return fmt.Errorf("catalog %s: invalid time column %q", c.Name, c.TimeColumn)
	}
	if c.StationColumn != "" && !identRe.MatchString(c.StationColumn) {
		return fmt.Errorf("catalog %s: invalid station column %q", c.Name, c.StationColumn)
	}
	if len(c.Measurements) == 0 {
		return fmt.Errorf("catalog %s: no measurements", c.Name)
	}
	seen := make(map[string]bool, len(c.Measurements))
	for _, m := range c.Measurements {
		if strings.TrimSpace(m.Key) == "" {
			return fmt.Errorf("catalog %s: measurement with empty key", c.Name)
		}
		if seen[m.Key] {
			return fmt.Errorf("catalog %s: duplicate measurement %q", c.Name, m.Key)
		}
		seen[m.Key] = true
		if !identRe.MatchString(m.Column) {
			return fmt.Errorf("catalog %s: measurement %q: invalid column %q", c.Name, m.Key, m.Column)
		}
	}
	return nil
}

// Builtin returns one of the catalogs shipped with the tools.
func Builtin(name string) (*Catalog, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", WS2000:
		return ws2000(), nil
	case DHT22:
		return dht22(), nil
	default:
		return nil, &types.UsageError{Msg: fmt.Sprintf("unknown station %q (allowed: %s, %s)", name, WS2000, DHT22)}
	}
}

// ws2000 follows the column order of the Ambient Weather WS-2000 backup.
func ws2000() *Catalog {
	return &Catalog{
		Name:       WS2000,
		Table:      "wx_data",
		TimeColumn: "date_time",
		Measurements: []types.Measurement{
			{Key: "itemp", Column: "indoor_temp", Label: "Indoor temperature", Unit: "°F", Headers: []string{"Indoor Temperature", "Indoor Temp"}},
			{Key: "ihumid", Column: "indoor_humidity", Label: "Indoor humidity", Unit: "%", Headers: []string{"Indoor Humidity"}},
			{Key: "otemp", Column: "outdoor_temp", Label: "Outdoor temperature", Unit: "°F", Headers: []string{"Outdoor Temperature", "Outdoor Temp"}},
			{Key: "ohumid", Column: "outdoor_humidity", Label: "Outdoor humidity", Unit: "%", Headers: []string{"Outdoor Humidity"}},
			{Key: "dewpt", Column: "dew_point", Label: "Dew point", Unit: "°F", Headers: []string{"Dew Point"}},
			{Key: "feels", Column: "feels_like", Label: "Feels like", Unit: "°F", Headers: []string{"Feels Like"}},
			{Key: "wind", Column: "wind", Label: "Wind", Unit: "mph", Headers: []string{"Wind", "Wind Speed"}},
			{Key: "gust", Column: "gust", Label: "Gust", Unit: "mph", Headers: []string{"Gust", "Wind Gust"}},
			{Key: "wdir", Column: "wind_dir", Label: "Wind direction", Unit: "°", Headers: []string{"Wind Direction"}},
			{Key: "apres", Column: "abs_pressure", Label: "Absolute pressure", Unit: "inHg", Headers: []string{"ABS Pressure", "Absolute Pressure"}},
			{Key: "rpres", Column: "rel_pressure", Label: "Relative pressure", Unit: "inHg", Headers: []string{"REL Pressure", "Relative Pressure"}},
			{Key: "solrad", Column: "solar_radiation", Label: "Solar radiation", Unit: "W/m²", Headers: []string{"Solar Rad.", "Solar Radiation"}},
			{Key: "uvidx", Column: "uv_index", Label: "UV index", Unit: "", Headers: []string{"UVI", "UV Index"}},
			{Key: "hrain", Column: "hourly_rain", Label: "Hourly rain", Unit: "in", Headers: []string{"Hourly Rain"}},
			{Key: "erain", Column: "event_rain", Label: "Event rain", Unit: "in", Headers: []string{"Event Rain"}},
			{Key: "drain", Column: "daily_rain", Label: "Daily rain", Unit: "in", Headers: []string{"Daily Rain"}},
			{Key: "wrain", Column: "weekly_rain", Label: "Weekly rain", Unit: "in", Headers: []string{"Weekly Rain"}},
			{Key: "mrain", Column: "monthly_rain", Label: "Monthly rain", Unit: "in", Headers: []string{"Monthly Rain"}},
			{Key: "yrain", Column: "yearly_rain", Label: "Yearly rain", Unit: "in", Headers: []string{"Yearly Rain"}},
		},
	}
}

// dht22 is the ESP32 DHT-22 sensor stored by wxrecord.
func dht22() *Catalog {
	return &Catalog{
		Name:          DHT22,
		Table:         "readings",
		TimeColumn:    "date_time",
		StationColumn: "station_id",
		Measurements: []types.Measurement{
			{Key: "temp", Column: "temp", Label: "Temperature", Unit: "°C", Headers: []string{"Temperature", "temperature_c"}},
			{Key: "humidity", Column: "humidity", Label: "Humidity", Unit: "%", Headers: []string{"Humidity", "humidity_pct"}},
		},
	}
}
