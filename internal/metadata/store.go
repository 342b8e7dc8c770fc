// Package metadata provides read-only access to the DSS-28 observation
// metadata: boresight scans, receiver configuration history, system
// temperatures and the source catalog. The tables are written by the
// acquisition pipeline; this package exposes no write methods at all.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ReceiverChannels is the fixed set of logical receiver signal paths.
var ReceiverChannels = []int{2, 4, 6, 8, 10, 12, 14, 16}

// lastIDTables maps the tables probed at construction to their surrogate
// id column. The probe is a diagnostic cursor hint only.
var lastIDTables = map[string]string{
	"rss_cfg": "rss_cfg_id",
	"tlog":    "tlog_id",
	"xscan":   "xscan_id",
	"xpwr":    "xpwr_id",
}

// Store is a read-only handle over the observation database. The wrapped
// *sql.DB is a concurrency-safe pool and the session cache is mutex
// guarded, so one Store serves concurrent readers.
type Store struct {
	db       *sql.DB
	lastIDs  map[string]int64
	sessions sessionCache
}

// NewStore wraps an existing *sql.DB pool and probes the last surrogate
// ids of the main tables. Probe failures are logged, never fatal.
func NewStore(ctx context.Context, db *sql.DB) *Store {
	s := &Store{
		db:       db,
		lastIDs:  make(map[string]int64, len(lastIDTables)),
		sessions: newSessionCache(),
	}

	for table, idCol := range lastIDTables {
		var id int64
		query := fmt.Sprintf(queryLastIDTmpl, idCol, table)
		if err := db.QueryRowContext(ctx, query).Scan(&id); err != nil {
			slog.Error("last id probe failed", "table", table, "error", err)
			continue
		}
		s.lastIDs[table] = id
	}
	return s
}

// LastIDs returns the surrogate ids observed at construction time, for
// diagnostics only.
func (s *Store) LastIDs() map[string]int64 {
	out := make(map[string]int64, len(s.lastIDs))
	for k, v := range s.lastIDs {
		out[k] = v
	}
	return out
}
