package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Boresight is one assembled calibration scan: the xscan row joined with
// its scan configuration, catalog source and the receiver state at scan
// time. Pointer fields are nil where the underlying lookup found nothing.
type Boresight struct {
	XScanID   int64         `json:"xscan_id"`
	XpwrCfgID *int64        `json:"xpwr_cfg_id"`
	UTC       TimeOfDay     `json:"utc"`
	Epoch     float64       `json:"epoch"`
	Tsrc      *float64      `json:"tsrc"`
	Az        *float64      `json:"az"`
	El        *float64      `json:"el"`
	SourceID  *int64        `json:"source_id"`
	Source    *string       `json:"source"`
	Axis      *string       `json:"axis"`
	Chan      *int64        `json:"chan"`
	Receiver  ReceiverState `json:"rx"`
}

// scanConfig is the per-id result of the xpwr_cfg lookup.
type scanConfig struct {
	sourceID sql.NullInt64
	axis     sql.NullString
	channel  sql.NullInt64
}

// ExtractBoresightData assembles the day's boresight records in the order
// the store returns them.
//
// Only the initial xscan fetch is fatal. Every later lookup — elevation
// backfill, scan configuration, source name, receiver state — degrades
// its own fields to nil on a miss or a failure, so one bad row never
// drops a record or aborts the day.
func (s *Store) ExtractBoresightData(ctx context.Context, year, doy int) ([]Boresight, error) {
	scans, err := s.fetchBoresightScans(ctx, year, doy)
	if err != nil {
		return nil, err
	}

	cfgCache := make(map[int64]scanConfig)
	nameCache := make(map[int64]*string)

	for i := range scans {
		b := &scans[i]

		if b.El == nil {
			b.El = s.backfillElevation(ctx, year, doy, b.Epoch)
		}

		if b.XpwrCfgID != nil {
			cfg, ok := cfgCache[*b.XpwrCfgID]
			if !ok {
				cfg = s.lookupScanConfig(ctx, *b.XpwrCfgID)
				cfgCache[*b.XpwrCfgID] = cfg
			}
			if cfg.sourceID.Valid {
				b.SourceID = &cfg.sourceID.Int64
			}
			if cfg.axis.Valid {
				b.Axis = &cfg.axis.String
			}
			if cfg.channel.Valid {
				b.Chan = &cfg.channel.Int64
			}
		}

		if b.SourceID != nil {
			name, ok := nameCache[*b.SourceID]
			if !ok {
				name = s.lookupSourceName(ctx, *b.SourceID)
				nameCache[*b.SourceID] = name
			}
			b.Source = name
		}

		rx, err := s.ReceiverData(ctx, AtDate(year, doy, b.UTC), boresightReceiverFields)
		if err != nil {
			slog.Error("receiver state for boresight", "xscan_id", b.XScanID, "error", err)
		} else {
			b.Receiver = rx
		}
	}

	return scans, nil
}

// fetchBoresightScans loads the day's xscan rows. This is the one fatal
// step of the assembly.
func (s *Store) fetchBoresightScans(ctx context.Context, year, doy int) ([]Boresight, error) {
	rows, err := s.db.QueryContext(ctx, queryBoresightScans, year, doy)
	if err != nil {
		return nil, fmt.Errorf("boresight scans %d/%03d: %w", year, doy, err)
	}
	defer rows.Close()

	var scans []Boresight
	for rows.Next() {
		var (
			b     Boresight
			cfgID sql.NullInt64
			tsrc  sql.NullFloat64
			az    sql.NullFloat64
			el    sql.NullFloat64
		)
		if err := rows.Scan(&b.XScanID, &cfgID, &b.UTC, &b.Epoch, &tsrc, &az, &el); err != nil {
			return nil, fmt.Errorf("scan xscan row: %w", err)
		}
		if cfgID.Valid {
			b.XpwrCfgID = &cfgID.Int64
		}
		if tsrc.Valid {
			b.Tsrc = &tsrc.Float64
		}
		if az.Valid {
			b.Az = &az.Float64
		}
		if el.Valid {
			b.El = &el.Float64
		}
		scans = append(scans, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("xscan rows: %w", err)
	}
	return scans, nil
}

// backfillElevation recovers a missing scan elevation from the power
// measurements nearest in time. Returns nil when nothing usable exists.
func (s *Store) backfillElevation(ctx context.Context, year, doy int, epoch float64) *float64 {
	var el sql.NullFloat64
	err := s.db.QueryRowContext(ctx, queryNearestPowerEl, year, doy, epoch).Scan(&el)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		slog.Error("elevation backfill", "year", year, "doy", doy, "epoch", epoch, "error", err)
		return nil
	case !el.Valid:
		return nil
	}
	return &el.Float64
}

// lookupScanConfig fetches source, axis and channel for one scan
// configuration id. A missing row leaves every field unknown.
func (s *Store) lookupScanConfig(ctx context.Context, cfgID int64) scanConfig {
	var cfg scanConfig
	err := s.db.QueryRowContext(ctx, queryScanConfig, cfgID).
		Scan(&cfg.sourceID, &cfg.axis, &cfg.channel)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("scan config lookup", "xpwr_cfg_id", cfgID, "error", err)
	}
	return cfg
}

// lookupSourceName resolves one catalog name, nil when unknown.
func (s *Store) lookupSourceName(ctx context.Context, sourceID int64) *string {
	var name string
	err := s.db.QueryRowContext(ctx, querySourceName, sourceID).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		slog.Error("source name lookup", "source_id", sourceID, "error", err)
		return nil
	}
	return &name
}
