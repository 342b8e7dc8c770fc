package metadata_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsysDayQuery = `
SELECT epoch, top
FROM tlog
WHERE chan = $1
  AND epoch >= $2
  AND epoch < $3`

const weatherQuery = `
SELECT datetime, pressure, temp, humidity, wind_speed, wind_dir
FROM weather
WHERE datetime >= $1 AND datetime < $2
ORDER BY datetime`

func TestSessionMemoizedByIdentity(t *testing.T) {
	store, _ := newMockStore(t)

	first := store.Session(2020, 136)
	second := store.Session(2020, 136)
	other := store.Session(2020, 137)

	assert.Same(t, first, second, "same (year, doy) must yield the same handle instance")
	assert.NotSame(t, first, other)
	assert.Equal(t, 2020, first.Year)
	assert.Equal(t, 136, first.DOY)
}

func TestSessionTsysUsesDayBounds(t *testing.T) {
	store, mock := newMockStore(t)

	dayStart := time.Date(2020, 5, 15, 0, 0, 0, 0, time.UTC)
	start := float64(dayStart.Unix())
	stop := float64(dayStart.Add(24 * time.Hour).Unix())

	// The day window is half-open with an exclusive upper bound, so a
	// fractional sample inside the day's last second still belongs to it.
	lastSecond := stop - 0.5
	mock.ExpectQuery(regexp.QuoteMeta(tsysDayQuery)).
		WithArgs(4, start, stop).
		WillReturnRows(sqlmock.NewRows([]string{"epoch", "top"}).
			AddRow(start+10, 31.2).
			AddRow(lastSecond, 31.9))

	points := store.Session(2020, 136).Tsys(context.Background(), 4)
	require.Len(t, points, 2)
	assert.Equal(t, lastSecond, points[1].Epoch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionWeather(t *testing.T) {
	store, mock := newMockStore(t)

	dayStart := time.Date(2020, 5, 15, 0, 0, 0, 0, time.UTC)
	sample := dayStart.Add(6 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(weatherQuery)).
		WithArgs(dayStart, dayStart.Add(24 * time.Hour)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"datetime", "pressure", "temp", "humidity", "wind_speed", "wind_dir"}).
			AddRow(sample, 1013.2, 18.4, 0.35, 3.1, nil))

	records, err := store.Session(2020, 136).Weather(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	w := records[0]
	assert.True(t, w.Datetime.Equal(sample))
	require.NotNil(t, w.Pressure)
	assert.Equal(t, 1013.2, *w.Pressure)
	assert.Nil(t, w.WindDir)
	assert.NoError(t, mock.ExpectationsWereMet())
}
