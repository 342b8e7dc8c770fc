package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// TsysPoint is one system-temperature sample from the tlog table.
type TsysPoint struct {
	Epoch float64 `json:"epoch"`
	Top   float64 `json:"top"`
}

// SystemTemperatures returns the channel's system temperatures within the
// inclusive [start, stop] epoch range, in store order.
//
// Executor failures are logged and reported as an absent result with a
// nil error; no other operation in this package swallows them, but this
// one's callers historically plot whatever they get.
func (s *Store) SystemTemperatures(ctx context.Context, channel int, start, stop float64) []TsysPoint {
	return s.tsysPoints(ctx, queryTsysRange, channel, start, stop)
}

// tsysPoints runs one tlog selection, degrading every failure to an
// absent result.
func (s *Store) tsysPoints(ctx context.Context, query string, channel int, start, stop float64) []TsysPoint {
	rows, err := s.db.QueryContext(ctx, query, channel, start, stop)
	if err != nil {
		slog.Error("system temperatures", "chan", channel, "error", err)
		return nil
	}
	defer rows.Close()

	var points []TsysPoint
	for rows.Next() {
		var p TsysPoint
		if err := rows.Scan(&p.Epoch, &p.Top); err != nil {
			slog.Error("system temperatures scan", "chan", channel, "error", err)
			return nil
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("system temperatures rows", "chan", channel, "error", err)
		return nil
	}
	return points
}

// SourceNames resolves catalog names for the given source ids, preserving
// input order. Ids of zero or less get a nil placeholder, as does any id
// the catalog does not know. The result is never nil, so an empty input
// yields an empty sequence.
func (s *Store) SourceNames(ctx context.Context, ids []int64) ([]*string, error) {
	names := make([]*string, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			names = append(names, nil)
			continue
		}

		var name string
		err := s.db.QueryRowContext(ctx, querySourceName, id).Scan(&name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			names = append(names, nil)
		case err != nil:
			return nil, fmt.Errorf("source name %d: %w", id, err)
		default:
			names = append(names, &name)
		}
	}
	return names, nil
}
