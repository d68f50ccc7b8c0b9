package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/heliograph/heliograph/internal/log"
	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/heliograph/heliograph/pkg/sunphase"
)

// eventOrder is the order events appear in responses, chronological for a
// normal mid-latitude day.
var eventOrder = []ephemeris.EventKind{
	ephemeris.SolarMidnight,
	ephemeris.AstronomicalDawn,
	ephemeris.NauticalDawn,
	ephemeris.Dawn,
	ephemeris.Sunrise,
	ephemeris.SolarNoon,
	ephemeris.Sunset,
	ephemeris.Dusk,
	ephemeris.NauticalDusk,
	ephemeris.AstronomicalDusk,
}

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, format string, args ...any) {
	respondJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// observerForRequest resolves the {location} path variable. A nil observer
// means the response has already been written.
func (h *Handlers) observerForRequest(w http.ResponseWriter, req *http.Request) (string, *observer.Observer) {
	name := mux.Vars(req)["location"]
	o, ok := h.controller.observers[name]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown location: %s", name)
		return "", nil
	}
	return name, o
}

// atParam parses the optional ?at= instant, defaulting to now.
func atParam(req *http.Request) (time.Time, error) {
	raw := req.URL.Query().Get("at")
	if raw == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("at must be RFC 3339: %v", err)
	}
	return at, nil
}

// GetLocations lists the configured locations.
func (h *Handlers) GetLocations(w http.ResponseWriter, req *http.Request) {
	out := make([]LocationResponse, 0, len(h.controller.names))
	for _, name := range h.controller.names {
		loc := h.controller.locations[name]
		out = append(out, LocationResponse{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			TimeZone:  loc.TimeZone,
			Subjects:  len(loc.Subjects),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetSubjects returns the current value of every tracked subject.
func (h *Handlers) GetSubjects(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, h.controller.tracker.Snapshots())
}

// GetLocationSubjects returns the tracked subjects for one location.
func (h *Handlers) GetLocationSubjects(w http.ResponseWriter, req *http.Request) {
	name, o := h.observerForRequest(w, req)
	if o == nil {
		return
	}
	respondJSON(w, http.StatusOK, h.controller.tracker.LocationSnapshots(name))
}

// GetEphemeris returns the event sets for the requested local date plus the
// days on either side of it. Defaults to today in the location's zone.
func (h *Handlers) GetEphemeris(w http.ResponseWriter, req *http.Request) {
	name, o := h.observerForRequest(w, req)
	if o == nil {
		return
	}

	date := time.Now().In(o.Location())
	if raw := req.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, o.Location())
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD: %v", err)
			return
		}
		date = parsed
	}

	resp := EphemerisResponse{Location: name}
	for delta := -1; delta <= 1; delta++ {
		day, err := h.dayResponse(o, date.AddDate(0, 0, delta))
		if err != nil {
			log.Errorf("ephemeris computation failed for %s: %v", name, err)
			respondError(w, http.StatusServiceUnavailable, "ephemeris computation failed, retry")
			return
		}
		resp.Days = append(resp.Days, day)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) dayResponse(o *observer.Observer, date time.Time) (DayResponse, error) {
	eph, err := ephemeris.Compute(o, date)
	if err != nil {
		return DayResponse{}, err
	}

	day := DayResponse{
		Date:              eph.Date.Format("2006-01-02"),
		NoonElevation:     eph.NoonElevation,
		MidnightElevation: eph.MidnightElevation,
	}
	for _, kind := range eventOrder {
		ev := eph.Events[kind]
		day.Events = append(day.Events, EventResponse{Kind: string(kind), At: ev.Instant})
	}
	if daylight, ok := eph.Daylight(); ok {
		secs := daylight.Seconds()
		day.DaylightSeconds = &secs
	}
	return day, nil
}

// GetPosition returns the sun's elevation and azimuth at an instant.
func (h *Handlers) GetPosition(w http.ResponseWriter, req *http.Request) {
	name, o := h.observerForRequest(w, req)
	if o == nil {
		return
	}
	at, err := atParam(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}

	pos := ephemeris.Position(o, at)
	respondJSON(w, http.StatusOK, PositionResponse{
		Location:     name,
		At:           at,
		ElevationDeg: pos.ElevationDeg,
		AzimuthDeg:   pos.AzimuthDeg,
	})
}

// GetPhase returns the sun phase classification at an instant.
func (h *Handlers) GetPhase(w http.ResponseWriter, req *http.Request) {
	name, o := h.observerForRequest(w, req)
	if o == nil {
		return
	}
	at, err := atParam(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}

	elev := ephemeris.ElevationAt(o, at)
	rising := ephemeris.ElevationAt(o, at.Add(30*time.Second)) > ephemeris.ElevationAt(o, at.Add(-30*time.Second))
	respondJSON(w, http.StatusOK, PhaseResponse{
		Location:     name,
		At:           at,
		ElevationDeg: elev,
		Sun:          sunphase.Classify(elev, rising),
	})
}
