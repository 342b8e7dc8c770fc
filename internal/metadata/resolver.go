package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ConfigRecord is one configuration row as column -> value. The surrogate
// id, year and doy columns are always present alongside the table's own
// fields.
type ConfigRecord map[string]any

// ConfigResolver finds the configuration in effect at a reference time.
// The batch form exists so callers are insulated from the per-channel
// round-trip strategy: an implementation may later collapse it into one
// latest-per-channel query without any caller changing.
type ConfigResolver interface {
	ResolveLatest(ctx context.Context, table string, channel int, at TimeSpec) (ConfigRecord, error)
	ResolveLatestBatch(ctx context.Context, table string, channels []int, at TimeSpec) (map[int]ConfigRecord, error)
}

var _ ConfigResolver = (*Store)(nil)

// configTable describes one time-ordered configuration table. Only
// registered tables are queryable; the registry is the sole source of
// identifiers interpolated into SQL.
type configTable struct {
	idCol   string
	chanCol string
	fields  []string
}

var configTables = map[string]configTable{
	"rss_cfg": {
		idCol:   "rss_cfg_id",
		chanCol: "chan",
		fields:  []string{"utc", "sky_freq", "feed", "pol", "nd", "if_mode", "if_bw", "bb_bw", "fiber_chan"},
	},
	"chan_cfg": {
		idCol:   "chan_cfg_id",
		chanCol: "chan",
		fields:  []string{"utc", "center_freq", "tdiode"},
	},
}

// hasField reports whether name is a selectable field of the table.
func (t configTable) hasField(name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}

// latestQuery renders the latest-row search for one registered table.
func latestQuery(name string, t configTable) string {
	sel := append([]string{t.idCol, "year", "doy"}, t.fields...)
	return fmt.Sprintf(queryLatestConfigTmpl, strings.Join(sel, ", "), name, t.chanCol)
}

// ResolveLatest returns the most recent configuration row for the channel
// at or before the reference time. ErrNotFound means the channel had no
// configuration yet; callers treat that as "unknown", not as a failure.
func (s *Store) ResolveLatest(ctx context.Context, table string, channel int, at TimeSpec) (ConfigRecord, error) {
	cfg, ok := configTables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	ref, err := at.Composite()
	if err != nil {
		return nil, err
	}

	res, err := s.queryColumnar(ctx, latestQuery(table, cfg),
		channel, ref.Year, ref.DOY, ref.UTC.String())
	if err != nil {
		return nil, fmt.Errorf("resolve %s chan %d: %w", table, channel, err)
	}
	if res.Len() == 0 {
		return nil, ErrNotFound
	}
	return ConfigRecord(res.Row(0)), nil
}

// ResolveLatestBatch resolves every channel independently. Channels with
// no qualifying row are absent from the result; one channel's gap never
// suppresses another's configuration. Executor failures propagate.
func (s *Store) ResolveLatestBatch(ctx context.Context, table string, channels []int, at TimeSpec) (map[int]ConfigRecord, error) {
	if _, ok := configTables[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if _, err := at.Composite(); err != nil {
		return nil, err
	}

	out := make(map[int]ConfigRecord, len(channels))
	for _, ch := range channels {
		rec, err := s.ResolveLatest(ctx, table, ch, at)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[ch] = rec
	}
	return out, nil
}
