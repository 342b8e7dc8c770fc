package metadata

// SQL for the metadata store. Table and column names are never taken from
// callers; dynamic statements are assembled only from the fixed
// configuration-table registry in resolver.go.
const (
	// queryLatestConfigTmpl finds the most recent configuration row for one
	// channel at or before a reference time. Ordering is by the composite
	// (year, doy, utc) key, not by the surrogate id: ids are only assumed
	// monotonic with time, and that assumption is not verified anywhere.
	// Placeholders: select list, table, channel column.
	// Parameters: $1 = channel, $2 = year, $3 = doy, $4 = utc.
	//
	// TODO: a DISTINCT ON (chan) variant could serve ResolveLatestBatch in
	// one round trip once chan = ANY($1) binding is wired through.
	queryLatestConfigTmpl = `
SELECT %s
FROM %s
WHERE %s = $1
  AND (year, doy, utc) <= ($2, $3, $4)
ORDER BY year DESC, doy DESC, utc DESC
LIMIT 1`

	// queryLastIDTmpl probes the highest surrogate id of a table. Used only
	// as a diagnostic cursor hint at store construction.
	// Placeholders: id column, table.
	queryLastIDTmpl = `SELECT COALESCE(MAX(%s), 0) FROM %s`

	// queryBoresightScans loads one day's boresight scans. Ordered by the
	// surrogate id, which reflects the acquisition pipeline's insertion
	// order. Parameters: $1 = year, $2 = doy.
	queryBoresightScans = `
SELECT xscan_id, xpwr_cfg_id, utc, epoch, tsrc, az, el
FROM xscan
WHERE year = $1 AND doy = $2
ORDER BY xscan_id`

	// queryNearestPowerEl backfills a missing scan elevation from the power
	// measurements, taking the row nearest in epoch on the same day.
	// Parameters: $1 = year, $2 = doy, $3 = scan epoch.
	queryNearestPowerEl = `
SELECT el
FROM xpwr
WHERE year = $1 AND doy = $2
ORDER BY ABS(epoch - $3)
LIMIT 1`

	// queryScanConfig resolves source, scan axis and channel for one scan
	// configuration. Zero rows means the configuration is unknown, not an
	// error: the store enforces no referential integrity.
	// Parameter: $1 = xpwr_cfg_id.
	queryScanConfig = `
SELECT source_id, axis, chan
FROM xpwr_cfg
WHERE xpwr_cfg_id = $1`

	// querySourceName looks up the catalog name of one source.
	// Parameter: $1 = source_id.
	querySourceName = `
SELECT name
FROM source
WHERE source_id = $1`

	// queryTsysRange selects system temperatures for one channel within an
	// inclusive epoch window, in store order.
	// Parameters: $1 = channel, $2 = start epoch, $3 = stop epoch.
	queryTsysRange = `
SELECT epoch, top
FROM tlog
WHERE chan = $1
  AND epoch >= $2
  AND epoch <= $3`

	// queryTsysDay selects one channel's system temperatures for a whole
	// observing day. The upper bound is exclusive so fractional epochs in
	// the day's last second are kept while the next midnight is not.
	// Parameters: $1 = channel, $2 = day start epoch, $3 = next day start.
	queryTsysDay = `
SELECT epoch, top
FROM tlog
WHERE chan = $1
  AND epoch >= $2
  AND epoch < $3`

	// queryWeatherDay selects one day's weather log.
	// Parameters: $1 = day start, $2 = day end (exclusive).
	queryWeatherDay = `
SELECT datetime, pressure, temp, humidity, wind_speed, wind_dir
FROM weather
WHERE datetime >= $1 AND datetime < $2
ORDER BY datetime`
)
