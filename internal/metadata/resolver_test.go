package metadata_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavrt/dss28meta/internal/metadata"
)

func TestResolveLatestReturnsMostRecentRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
		WithArgs(2, 2020, 136, "12:30:00").
		WillReturnRows(rssRow(41, 2020, 135, "08:00:00", 8450.0, "L", "U"))

	rec, err := store.ResolveLatest(context.Background(), "rss_cfg", 2,
		metadata.AtDate(2020, 136, metadata.NewTimeOfDay(12, 30, 0)))
	require.NoError(t, err)

	assert.Equal(t, int64(41), rec["rss_cfg_id"])
	assert.Equal(t, "L", rec["pol"])
	assert.Equal(t, 8450.0, rec["sky_freq"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestBeforeFirstConfiguration(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
		WithArgs(2, 2019, 1, "00:00:00").
		WillReturnRows(emptyRSSRows())

	_, err := store.ResolveLatest(context.Background(), "rss_cfg", 2,
		metadata.AtDate(2019, 1, metadata.NewTimeOfDay(0, 0, 0)))
	assert.ErrorIs(t, err, metadata.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestStableBetweenChanges(t *testing.T) {
	store, mock := newMockStore(t)

	// No configuration change between the two reference times, so both
	// resolutions land on the same row.
	for _, args := range [][]any{
		{2, 2020, 103, "00:00:00"},
		{2, 2020, 104, "18:00:00"},
	} {
		mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
			WithArgs(args[0], args[1], args[2], args[3]).
			WillReturnRows(rssRow(41, 2020, 100, "08:00:00", 8450.0, "L", "U"))
	}

	first, err := store.ResolveLatest(context.Background(), "rss_cfg", 2,
		metadata.AtDate(2020, 103, metadata.NewTimeOfDay(0, 0, 0)))
	require.NoError(t, err)
	second, err := store.ResolveLatest(context.Background(), "rss_cfg", 2,
		metadata.AtDate(2020, 104, metadata.NewTimeOfDay(18, 0, 0)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestEpochReference(t *testing.T) {
	store, mock := newMockStore(t)

	// 2020-05-15 12:30:00 UTC is doy 136.
	epoch := 1589545800.0

	mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
		WithArgs(4, 2020, 136, "12:30:00").
		WillReturnRows(rssRow(52, 2020, 136, "09:00:00", 14200.0, "R", "L"))

	rec, err := store.ResolveLatest(context.Background(), "rss_cfg", 4, metadata.AtEpoch(epoch))
	require.NoError(t, err)
	assert.Equal(t, int64(52), rec["rss_cfg_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestChanCfg(t *testing.T) {
	store, mock := newMockStore(t)

	chanCfgQuery := `
SELECT chan_cfg_id, year, doy, utc, center_freq, tdiode
FROM chan_cfg
WHERE chan = $1
  AND (year, doy, utc) <= ($2, $3, $4)
ORDER BY year DESC, doy DESC, utc DESC
LIMIT 1`

	mock.ExpectQuery(regexp.QuoteMeta(chanCfgQuery)).
		WithArgs(6, 2020, 136, "12:00:00").
		WillReturnRows(sqlmock.NewRows(
			[]string{"chan_cfg_id", "year", "doy", "utc", "center_freq", "tdiode"}).
			AddRow(int64(9), 2020, 130, "07:00:00", 8400.0, 1.0))

	rec, err := store.ResolveLatest(context.Background(), "chan_cfg", 6,
		metadata.AtDate(2020, 136, metadata.NewTimeOfDay(12, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, 8400.0, rec["center_freq"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestInputErrors(t *testing.T) {
	store, _ := newMockStore(t)
	ctx := context.Background()

	_, err := store.ResolveLatest(ctx, "no_such_cfg", 2,
		metadata.AtDate(2020, 100, metadata.NewTimeOfDay(0, 0, 0)))
	assert.ErrorIs(t, err, metadata.ErrUnknownTable)

	// The zero TimeSpec carries neither a date nor an epoch.
	_, err = store.ResolveLatest(ctx, "rss_cfg", 2, metadata.TimeSpec{})
	assert.ErrorIs(t, err, metadata.ErrInvalidTimeSpec)
}

func TestResolveLatestBatchSkipsUnconfiguredChannels(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
		WithArgs(2, 2020, 136, "12:00:00").
		WillReturnRows(rssRow(41, 2020, 135, "08:00:00", 8450.0, "L", "U"))
	mock.ExpectQuery(regexp.QuoteMeta(rssLatestQuery)).
		WithArgs(4, 2020, 136, "12:00:00").
		WillReturnRows(emptyRSSRows())

	recs, err := store.ResolveLatestBatch(context.Background(), "rss_cfg", []int{2, 4},
		metadata.AtDate(2020, 136, metadata.NewTimeOfDay(12, 0, 0)))
	require.NoError(t, err)

	assert.Contains(t, recs, 2)
	assert.NotContains(t, recs, 4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLatestBatchFailsFastOnBadTimeSpec(t *testing.T) {
	store, _ := newMockStore(t)

	// No expectations: validation must reject the call before any query.
	_, err := store.ResolveLatestBatch(context.Background(), "rss_cfg",
		metadata.ReceiverChannels, metadata.TimeSpec{})
	assert.ErrorIs(t, err, metadata.ErrInvalidTimeSpec)
}
