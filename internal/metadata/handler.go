package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the read-only metadata operations over HTTP.
type Handler struct {
	store *Store
}

// NewHandler creates a Handler backed by the given Store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/v1/boresights", h.Boresights)
	r.Get("/api/v1/receiver", h.Receiver)
	r.Get("/api/v1/tsys", h.Tsys)
	r.Get("/api/v1/sources", h.Sources)
	r.Get("/api/v1/sessions/{year}/{doy}/weather", h.SessionWeather)
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// BoresightsResponse is the response for GET /api/v1/boresights.
type BoresightsResponse struct {
	Year       int         `json:"year"`
	DOY        int         `json:"doy"`
	Boresights []Boresight `json:"boresights"`
}

// TsysResponse is the response for GET /api/v1/tsys.
type TsysResponse struct {
	Chan   int         `json:"chan"`
	Points []TsysPoint `json:"points"`
}

// SourcesResponse is the response for GET /api/v1/sources. Names keep
// the input id order, with null for unknown or zero ids.
type SourcesResponse struct {
	Source []*string `json:"source"`
}

// WeatherResponse is the response for the session weather endpoint.
type WeatherResponse struct {
	Year    int             `json:"year"`
	DOY     int             `json:"doy"`
	Records []WeatherRecord `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---------------------------------------------------------------------------
// GET /api/v1/boresights
// ---------------------------------------------------------------------------

// Boresights returns the assembled boresight records for one day.
func (h *Handler) Boresights(w http.ResponseWriter, r *http.Request) {
	year, doy, err := parseDay(r.URL.Query().Get("year"), r.URL.Query().Get("doy"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	boresights, err := h.store.ExtractBoresightData(r.Context(), year, doy)
	if err != nil {
		slog.Error("extract boresights", "year", year, "doy", doy, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to assemble boresight data")
		return
	}
	if boresights == nil {
		boresights = []Boresight{}
	}

	writeJSON(w, http.StatusOK, BoresightsResponse{Year: year, DOY: doy, Boresights: boresights})
}

// ---------------------------------------------------------------------------
// GET /api/v1/receiver
// ---------------------------------------------------------------------------

// Receiver returns the per-channel receiver state at a reference time.
// Exactly one of (year, doy, time) or epoch must be supplied.
func (h *Handler) Receiver(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	at, err := parseTimeSpec(q.Get("year"), q.Get("doy"), q.Get("time"), q.Get("epoch"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	var fields []string
	if raw := q.Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
	}

	state, err := h.store.ReceiverData(r.Context(), at, fields)
	switch {
	case errors.Is(err, ErrInvalidTimeSpec), errors.Is(err, ErrUnknownField):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("receiver data", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to resolve receiver state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// ---------------------------------------------------------------------------
// GET /api/v1/tsys
// ---------------------------------------------------------------------------

// Tsys returns system temperatures for a channel within an epoch range.
func (h *Handler) Tsys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	channel, err := strconv.Atoi(q.Get("chan"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "chan must be an integer")
		return
	}
	start, err := strconv.ParseFloat(q.Get("start"), 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "start must be an epoch value")
		return
	}
	stop, err := strconv.ParseFloat(q.Get("stop"), 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "stop must be an epoch value")
		return
	}

	points := h.store.SystemTemperatures(r.Context(), channel, start, stop)
	if points == nil {
		points = []TsysPoint{}
	}

	writeJSON(w, http.StatusOK, TsysResponse{Chan: channel, Points: points})
}

// ---------------------------------------------------------------------------
// GET /api/v1/sources
// ---------------------------------------------------------------------------

// Sources resolves catalog names for a comma-separated id list.
func (h *Handler) Sources(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid source id %q", part))
				return
			}
			ids = append(ids, id)
		}
	}

	names, err := h.store.SourceNames(r.Context(), ids)
	if err != nil {
		slog.Error("source names", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to resolve source names")
		return
	}

	writeJSON(w, http.StatusOK, SourcesResponse{Source: names})
}

// ---------------------------------------------------------------------------
// GET /api/v1/sessions/{year}/{doy}/weather
// ---------------------------------------------------------------------------

// SessionWeather returns the day's weather log via the memoized session
// handle.
func (h *Handler) SessionWeather(w http.ResponseWriter, r *http.Request) {
	year, doy, err := parseDay(chi.URLParam(r, "year"), chi.URLParam(r, "doy"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Session(year, doy).Weather(r.Context())
	if err != nil {
		slog.Error("session weather", "year", year, "doy", doy, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch weather")
		return
	}
	if records == nil {
		records = []WeatherRecord{}
	}

	writeJSON(w, http.StatusOK, WeatherResponse{Year: year, DOY: doy, Records: records})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseDay validates a (year, doy) pair.
func parseDay(yearStr, doyStr string) (year, doy int, err error) {
	year, err = strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, fmt.Errorf("year must be an integer")
	}
	doy, err = strconv.Atoi(doyStr)
	if err != nil {
		return 0, 0, fmt.Errorf("doy must be an integer")
	}
	if doy < 1 || doy > 366 {
		return 0, 0, fmt.Errorf("doy must be within 1..366")
	}
	return year, doy, nil
}

// parseTimeSpec builds a TimeSpec from query parameters, enforcing that
// exactly one of a structured date or an epoch is present.
func parseTimeSpec(yearStr, doyStr, timeStr, epochStr string) (TimeSpec, error) {
	hasDate := yearStr != "" || doyStr != "" || timeStr != ""
	hasEpoch := epochStr != ""

	switch {
	case hasDate && hasEpoch:
		return TimeSpec{}, fmt.Errorf("supply either year/doy/time or epoch, not both")
	case hasEpoch:
		epoch, err := strconv.ParseFloat(epochStr, 64)
		if err != nil {
			return TimeSpec{}, fmt.Errorf("epoch must be a number")
		}
		return AtEpoch(epoch), nil
	case hasDate:
		year, doy, err := parseDay(yearStr, doyStr)
		if err != nil {
			return TimeSpec{}, err
		}
		utc, err := ParseTimeOfDay(timeStr)
		if err != nil {
			return TimeSpec{}, fmt.Errorf("time must be HH:MM:SS")
		}
		return AtDate(year, doy, utc), nil
	default:
		return TimeSpec{}, fmt.Errorf("a time specification is required (year/doy/time or epoch)")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
