package catalog

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFile reads a custom catalog from a yaml, json or toml file, e.g.
//
//	name: backyard
//	table: wx_data
//	time_column: date_time
//	measurements:
//	  - key: otemp
//	    column: outdoor_temp
//	    label: Outdoor temperature
//	    unit: °C
//	    headers: ["Outside Temp"]
func LoadFile(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("time_column", "date_time")
	v.SetDefault("table", "wx_data")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode catalog %q: %w", path, err)
	}
	for i := range c.Measurements {
		if c.Measurements[i].Column == "" {
			c.Measurements[i].Column = c.Measurements[i].Key
		}
		if c.Measurements[i].Label == "" {
			c.Measurements[i].Label = c.Measurements[i].Key
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
