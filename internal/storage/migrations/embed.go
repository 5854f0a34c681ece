package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var scripts embed.FS

// Dialect names a directory of embedded scripts.
type Dialect string

const (
	Postgres   Dialect = "postgres"
	Clickhouse Dialect = "clickhouse"
)

type script struct {
	name string
	body string
}

// load returns the non-empty scripts of d ordered by file name.
func load(d Dialect) ([]script, error) {
	entries, err := fs.ReadDir(scripts, string(d))
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", d, err)
	}

	var out []script
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		data, err := fs.ReadFile(scripts, path.Join(string(d), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, script{name: entry.Name(), body: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}
