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

// newMockStore builds a Store over a sqlmock connection. The last-id
// probes issued at construction find no expectations and fail; the store
// treats that as non-fatal, which keeps every test's expectation list
// scoped to the operation under test.
func newMockStore(t *testing.T) (*metadata.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := metadata.NewStore(context.Background(), db)
	return store, mock
}

// rssLatestQuery mirrors the latest-row search rendered for rss_cfg.
const rssLatestQuery = `
SELECT rss_cfg_id, year, doy, utc, sky_freq, feed, pol, nd, if_mode, if_bw, bb_bw, fiber_chan
FROM rss_cfg
WHERE chan = $1
  AND (year, doy, utc) <= ($2, $3, $4)
ORDER BY year DESC, doy DESC, utc DESC
LIMIT 1`

var rssColumns = []string{
	"rss_cfg_id", "year", "doy", "utc",
	"sky_freq", "feed", "pol", "nd", "if_mode", "if_bw", "bb_bw", "fiber_chan",
}

// rssRow builds a canned rss_cfg result row.
func rssRow(id int64, year, doy int, utc string, skyFreq float64, pol, ifMode string) *sqlmock.Rows {
	return sqlmock.NewRows(rssColumns).
		AddRow(id, year, doy, utc, skyFreq, 1, pol, "off", ifMode, 8.0, 4.0, 1)
}

// emptyRSSRows is a zero-row rss_cfg result.
func emptyRSSRows() *sqlmock.Rows {
	return sqlmock.NewRows(rssColumns)
}

func TestNewStoreProbesLastIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Construction order over the probed tables is unspecified.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(rss_cfg_id), 0) FROM rss_cfg`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(120)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(tlog_id), 0) FROM tlog`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(99000)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(xscan_id), 0) FROM xscan`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(451)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(xpwr_id), 0) FROM xpwr`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(7302)))

	store := metadata.NewStore(context.Background(), db)

	assert.Equal(t, map[string]int64{
		"rss_cfg": 120,
		"tlog":    99000,
		"xscan":   451,
		"xpwr":    7302,
	}, store.LastIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreSurvivesProbeFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No expectations: every probe fails. Construction must still succeed
	// with an empty diagnostic map.
	store := metadata.NewStore(context.Background(), db)
	assert.Empty(t, store.LastIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}
