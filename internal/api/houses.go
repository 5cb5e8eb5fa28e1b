package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nerrad567/tartan-home-core/internal/history"
	"github.com/nerrad567/tartan-home-core/internal/house"
)

// updateSource labels API updates in metrics.
const updateSource = "api"

// handleGetHouse returns the current state view.
func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
	st := storeFrom(r.Context())
	writeJSON(w, http.StatusOK, st.GetState().Envelope())
}

// handleUpdateHouse runs one cycle with the posted field-set and returns
// the resulting view. An empty body is an empty update. Rejected fields are reported in the event log, not
// as HTTP errors.
func (s *Server) handleUpdateHouse(w http.ResponseWriter, r *http.Request) {
	st := storeFrom(r.Context())

	var fields house.Fields
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		s.metrics.RecordUpdate(updateSource, err)
		writeBadRequest(w, "body must be a JSON object of fields")
		return
	}
	if fields == nil {
		fields = house.Fields{}
	}

	state, err := st.ApplyUpdate(fields)
	s.metrics.RecordUpdate(updateSource, err)
	if err != nil {
		if errors.Is(err, house.ErrInvariantViolation) {
			writeConflict(w, err.Error())
			return
		}
		s.logger.Error("applying house update", "house", st.Name(), "error", err)
		writeInternalError(w, "failed to apply update")
		return
	}

	writeJSON(w, http.StatusOK, state.Envelope())
}

// handleHouseHistory returns recent snapshots, newest first.
func (s *Server) handleHouseHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history is not enabled")
		return
	}
	st := storeFrom(r.Context())

	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	snapshots, err := s.history.ListSnapshots(r.Context(), st.Name(), limit)
	if err != nil {
		s.logger.Error("listing snapshots", "house", st.Name(), "error", err)
		writeInternalError(w, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"house":     st.Name(),
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// handleHouseEvents returns a page of persisted event log lines.
func (s *Server) handleHouseEvents(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history is not enabled")
		return
	}
	st := storeFrom(r.Context())

	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	page, err := s.history.ListEvents(r.Context(), history.EventFilter{
		House:  st.Name(),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("listing events", "house", st.Name(), "error", err)
		writeInternalError(w, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// queryInt parses an optional non-negative integer query parameter,
// writing a 400 response when it is malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeBadRequest(w, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
