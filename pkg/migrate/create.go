package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes an empty goose migration with the same version into
// every dir, so postgres and sqlite schemas stay paired:
//
//	<dir>/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(name string, now time.Time, dirs ...string) ([]string, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one dir is required")
	}
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	version := now.UTC().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, safe)

	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			return paths, fmt.Errorf("dir is required")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", dir, err)
		}

		fullpath := filepath.Join(dir, filename)
		if _, err := os.Stat(fullpath); err == nil {
			return paths, fmt.Errorf("migration already exists: %s", fullpath)
		}

		body := fmt.Sprintf("-- +goose Up\n-- %s\n\n-- +goose Down\n-- rollback %s\n", safe, safe)
		if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", fullpath, err)
		}
		paths = append(paths, fullpath)
	}
	return paths, nil
}

func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}
