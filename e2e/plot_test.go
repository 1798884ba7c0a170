//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeBackup(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Outdoor Temperature(℉),Outdoor Humidity(%)\n")
	start := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 72; h++ {
		fmt.Fprintf(&b, "%s,%d,%d\n", start.Add(time.Duration(h)*time.Hour).Format("2006/1/2 15:04"), 20+h%10, 50+h%20)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlotters_ExitCodes(t *testing.T) {
	repoRoot := repoRootPath(t)
	wxplot := buildBinary(t, repoRoot, "wxplot")
	wxplot2 := buildBinary(t, repoRoot, "wxplot2")

	dir := t.TempDir()
	backup := filepath.Join(dir, "Backup-20230113.CSV")
	writeBackup(t, backup)

	env := append(os.Environ(), "APP_ENV=prod", "SQLITE_PATH="+filepath.Join(dir, "ws2000.db"))

	tests := []struct {
		name   string
		bin    string
		args   []string
		want   int
		output string
	}{
		{name: "single png", bin: wxplot, args: []string{"-f", backup, "-o", filepath.Join(dir, "a.png")}, want: 0, output: "a.png"},
		{name: "pair html", bin: wxplot2, args: []string{"-f", backup, "-d", "otemp,ohumid", "-o", filepath.Join(dir, "b.html")}, want: 0, output: "b.html"},
		{name: "no data", bin: wxplot, args: []string{"-f", backup, "-s", "2030-01-01", "-e", "2030-01-02", "-o", filepath.Join(dir, "c.svg")}, want: 0, output: "c.svg"},
		{name: "inverted range", bin: wxplot, args: []string{"-f", backup, "-s", "2023-01-12", "-e", "2023-01-10"}, want: 2},
		{name: "wrong count", bin: wxplot2, args: []string{"-f", backup, "-d", "otemp"}, want: 2},
		{name: "missing file", bin: wxplot, args: []string{"-f", filepath.Join(dir, "nope.csv"), "-o", filepath.Join(dir, "d.png")}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(tt.bin, tt.args...)
			cmd.Env = env
			cmd.Dir = dir
			if got := exitCode(t, cmd); got != tt.want {
				t.Fatalf("exit code = %d, want %d", got, tt.want)
			}
			if tt.output != "" {
				fi, err := os.Stat(filepath.Join(dir, tt.output))
				if err != nil || fi.Size() == 0 {
					t.Fatalf("output %s not written: %v", tt.output, err)
				}
			}
		})
	}
}
