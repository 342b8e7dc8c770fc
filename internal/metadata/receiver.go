package metadata

import (
	"context"
	"fmt"
)

// boresightReceiverFields is the receiver state attached to each
// assembled boresight record.
var boresightReceiverFields = []string{"utc", "sky_freq", "pol", "if_mode", "if_bw"}

// ReceiverState maps field -> channel -> value. A nil value marks a
// channel whose configuration is unknown at the reference time.
type ReceiverState map[string]map[int]any

// ReceiverData reports the receiver configuration in effect at the
// reference time, per requested field and per channel of the fixed set.
//
// An invalid time specification or an unknown field fails fast before any
// query. A configuration gap on one channel yields nil values for that
// channel only; the other channels' fields stay populated.
func (s *Store) ReceiverData(ctx context.Context, at TimeSpec, fields []string) (ReceiverState, error) {
	if len(fields) == 0 {
		fields = configTables["rss_cfg"].fields
	}
	for _, f := range fields {
		if !configTables["rss_cfg"].hasField(f) {
			return nil, fmt.Errorf("%w: rss_cfg has no field %q", ErrUnknownField, f)
		}
	}
	if _, err := at.Composite(); err != nil {
		return nil, err
	}

	recs, err := s.ResolveLatestBatch(ctx, "rss_cfg", ReceiverChannels, at)
	if err != nil {
		return nil, err
	}

	out := make(ReceiverState, len(fields))
	for _, f := range fields {
		perChan := make(map[int]any, len(ReceiverChannels))
		for _, ch := range ReceiverChannels {
			if rec, ok := recs[ch]; ok {
				perChan[ch] = rec[f]
			} else {
				perChan[ch] = nil
			}
		}
		out[f] = perChan
	}
	return out, nil
}
