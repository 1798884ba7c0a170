package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/weather/types"
)

const (
	CmdMigrate = "migrate"
	CmdImport  = "import"
)

// LoadOptions is a parsed wxload command line. Path is empty when import
// should pick the newest backup under BACKUP_DIR.
type LoadOptions struct {
	Command string
	Path    string
	Catalog string
	Station string
}

func ParseLoad(prog string, args []string, cfg config.Config, out io.Writer) (LoadOptions, error) {
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(out, "Usage of %s:\n  %s migrate\n  %s import [backup.csv]\n\nFlags:\n%s", prog, prog, prog, fs.FlagUsages())
	}
	catalogName := fs.String("catalog", cfg.StationCatalog, "station catalog: ws2000, dht22 or a catalog file")
	station := fs.String("station", cfg.MQTTStationID, "station id for catalogs recorded per station")

	fail := func(err error) (LoadOptions, error) {
		return LoadOptions{}, &types.UsageError{
			Msg: fmt.Sprintf("%v\n\nUsage of %s:\n  %s migrate\n  %s import [backup.csv]\n\nFlags:\n%s", err, prog, prog, prog, fs.FlagUsages()),
			Err: err,
		}
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return LoadOptions{}, ErrHelp
		}
		return fail(err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fail(errors.New("missing command"))
	}
	opts := LoadOptions{
		Command: rest[0],
		Catalog: strings.TrimSpace(*catalogName),
		Station: strings.TrimSpace(*station),
	}
	switch opts.Command {
	case CmdMigrate:
		if len(rest) > 1 {
			return fail(fmt.Errorf("migrate takes no arguments, got %q", strings.Join(rest[1:], " ")))
		}
	case CmdImport:
		switch len(rest) {
		case 1:
		case 2:
			opts.Path = rest[1]
		default:
			return fail(fmt.Errorf("import takes at most one path, got %d", len(rest)-1))
		}
	default:
		return fail(fmt.Errorf("unknown command %q", opts.Command))
	}
	return opts, nil
}

// ParseRecord accepts only -h/--help; the recorder is configured from the
// environment.
func ParseRecord(prog string, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(out, "Usage of %s:\n  %s\n\nConfigured with MQTT_BROKER, MQTT_PORT, MQTT_TOPIC, MQTT_STATION_ID and SQLITE_PATH.\n", prog, prog)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ErrHelp
		}
		return &types.UsageError{Msg: err.Error(), Err: err}
	}
	if fs.NArg() > 0 {
		return &types.UsageError{Msg: fmt.Sprintf("%s takes no arguments, got %q", prog, strings.Join(fs.Args(), " "))}
	}
	return nil
}
