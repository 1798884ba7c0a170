package app

import (
	"fmt"
	"os"

	"github.com/AlSimons/graph-ambient-weather/internal/weather/catalog"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

// resolveCatalog accepts a builtin catalog name or the path of a catalog file.
func resolveCatalog(name string) (*catalog.Catalog, error) {
	if cat, err := catalog.Builtin(name); err == nil {
		return cat, nil
	}
	if _, err := os.Stat(name); err == nil {
		cat, err := catalog.LoadFile(name)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}
		return cat, nil
	}
	return nil, &types.UsageError{Msg: fmt.Sprintf("unknown catalog %q (builtin: %s, %s, or a catalog file)", name, catalog.WS2000, catalog.DHT22)}
}
