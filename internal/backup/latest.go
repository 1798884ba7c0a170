package backup

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

var backupPatterns = []string{
	filepath.Join("*", "Backup-*.CSV"),
	filepath.Join("*", "Backup-*.csv"),
	"Backup-*.CSV",
	"Backup-*.csv",
}

// FindLatest returns the most recent WS-2000 backup under dir. Backups are
// ordered by file name; on equal names the one in the greatest yyyymmdd
// directory wins over one lying directly in dir.
func FindLatest(dir string) (string, error) {
	var files []string
	for _, p := range backupPatterns {
		m, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return "", fmt.Errorf("glob %s: %w", p, err)
		}
		files = append(files, m...)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no backup files under %s: %w", dir, fs.ErrNotExist)
	}
	sort.Slice(files, func(i, j int) bool {
		bi, bj := filepath.Base(files[i]), filepath.Base(files[j])
		if bi != bj {
			return bi < bj
		}
		di, dj := filepath.Dir(files[i]) != filepath.Clean(dir), filepath.Dir(files[j]) != filepath.Clean(dir)
		if di != dj {
			return !di
		}
		return files[i] < files[j]
	})
	return files[len(files)-1], nil
}
