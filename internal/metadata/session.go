package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session groups queries scoped to one observing day. Handles are
// memoized per (year, doy) for the lifetime of the owning Store, so two
// calls with the same arguments return the same instance.
type Session struct {
	store *Store
	Year  int
	DOY   int
}

// sessionCache is the explicit get-or-create cache owned by the Store.
// Process lifetime is the cache lifetime; there is no invalidation.
type sessionCache struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

type sessionKey struct {
	year int
	doy  int
}

func newSessionCache() sessionCache {
	return sessionCache{sessions: make(map[sessionKey]*Session)}
}

// Session returns the memoized handle for an observing day, creating it
// on first use.
func (s *Store) Session(year, doy int) *Session {
	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()

	key := sessionKey{year: year, doy: doy}
	if sess, ok := s.sessions.sessions[key]; ok {
		return sess
	}
	sess := &Session{store: s, Year: year, DOY: doy}
	s.sessions.sessions[key] = sess
	return sess
}

// Boresights assembles the session day's boresight records.
func (s *Session) Boresights(ctx context.Context) ([]Boresight, error) {
	return s.store.ExtractBoresightData(ctx, s.Year, s.DOY)
}

// Tsys returns the channel's system temperatures for the session day,
// the half-open [midnight, next midnight) epoch window.
func (s *Session) Tsys(ctx context.Context, channel int) []TsysPoint {
	start, stop := EpochBounds(s.Year, s.DOY)
	return s.store.tsysPoints(ctx, queryTsysDay, channel, start, stop)
}

// WeatherRecord is one sample from the ancillary weather log.
type WeatherRecord struct {
	Datetime  time.Time `json:"datetime"`
	Pressure  *float64  `json:"pressure"`
	Temp      *float64  `json:"temp"`
	Humidity  *float64  `json:"humidity"`
	WindSpeed *float64  `json:"wind_speed"`
	WindDir   *float64  `json:"wind_dir"`
}

// Weather returns the session day's weather log in time order.
func (s *Session) Weather(ctx context.Context) ([]WeatherRecord, error) {
	start, end := DayBounds(s.Year, s.DOY)

	rows, err := s.store.db.QueryContext(ctx, queryWeatherDay, start, end)
	if err != nil {
		return nil, fmt.Errorf("weather %d/%03d: %w", s.Year, s.DOY, err)
	}
	defer rows.Close()

	var records []WeatherRecord
	for rows.Next() {
		var w WeatherRecord
		if err := rows.Scan(&w.Datetime, &w.Pressure, &w.Temp, &w.Humidity, &w.WindSpeed, &w.WindDir); err != nil {
			return nil, fmt.Errorf("scan weather row: %w", err)
		}
		records = append(records, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("weather rows: %w", err)
	}
	return records, nil
}
