// Package googletest provides a mock of the Google Calendar v3 events
// endpoints used by the google package.
package googletest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	events  map[string]map[string]*calendar.Event // calendarID -> eventID -> event
	patches []string
	limited int

	// Now stamps the updated field of patched events. Defaults to time.Now.
	Now func() time.Time
}

func NewServer() *Server {
	s := &Server{
		events: make(map[string]map[string]*calendar.Event),
		Now:    time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// AddEvent stores a copy of event.
func (s *Server) AddEvent(calendarID string, event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.events[calendarID] == nil {
		s.events[calendarID] = make(map[string]*calendar.Event)
	}
	s.events[calendarID][event.Id] = clone(event)
}

// Event returns a copy of the stored event, or nil.
func (s *Server) Event(calendarID, eventID string) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.events[calendarID][eventID]
	if e == nil {
		return nil
	}
	return clone(e)
}

// Patches returns the ids of every patched event, in order.
func (s *Server) Patches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.patches...)
}

// RateLimit makes the next n requests fail with rateLimitExceeded.
func (s *Server) RateLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limited = n
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	idx := strings.Index(r.URL.Path, "/calendars/")
	if idx == -1 {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	if s.rateLimited() {
		writeError(w, http.StatusForbidden, "rateLimitExceeded")
		return
	}

	// calendars/{calendarId}/events[/{eventId}]
	parts := strings.Split(strings.Trim(r.URL.Path[idx+len("/calendars/"):], "/"), "/")
	if len(parts) < 2 || parts[1] != "events" {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	calendarID := parts[0]

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.listEvents(w, r, calendarID)
	case len(parts) == 3 && r.Method == http.MethodGet:
		s.getEvent(w, calendarID, parts[2])
	case len(parts) == 3 && r.Method == http.MethodPatch:
		s.patchEvent(w, r, calendarID, parts[2])
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) rateLimited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limited == 0 {
		return false
	}
	s.limited--
	return true
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := r.URL.Query()
	updatedMin := parseTime(query.Get("updatedMin"))
	timeMin := parseTime(query.Get("timeMin"))
	timeMax := parseTime(query.Get("timeMax"))
	showDeleted := query.Get("showDeleted") == "true"

	var events []*calendar.Event
	for _, evt := range s.events[calendarID] {
		if evt.Status == "cancelled" && !showDeleted {
			continue
		}
		if !updatedMin.IsZero() && !parseTime(evt.Updated).After(updatedMin) {
			continue
		}
		start, end := eventTime(evt.Start), eventTime(evt.End)
		if !timeMin.IsZero() && !end.After(timeMin) {
			continue
		}
		if !timeMax.IsZero() && !start.Before(timeMax) {
			continue
		}
		events = append(events, evt)
	}

	switch query.Get("orderBy") {
	case "updated":
		sort.Slice(events, func(i, j int) bool {
			return parseTime(events[i].Updated).Before(parseTime(events[j].Updated))
		})
	default:
		sort.Slice(events, func(i, j int) bool {
			return eventTime(events[i].Start).Before(eventTime(events[j].Start))
		})
	}

	// The page token is the start index.
	start, _ := strconv.Atoi(query.Get("pageToken"))
	maxRes := len(events)
	if v, err := strconv.Atoi(query.Get("maxResults")); err == nil && v > 0 {
		maxRes = v
	}
	end := min(start+maxRes, len(events))

	resp := &calendar.Events{
		Kind:  "calendar#events",
		Items: events[start:end],
	}
	if end < len(events) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

func (s *Server) getEvent(w http.ResponseWriter, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.events[calendarID][eventID]
	if event == nil {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	writeJSON(w, event)
}

// patchEvent merges the request body onto the stored event, leaving absent
// fields untouched.
func (s *Server) patchEvent(w http.ResponseWriter, r *http.Request, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patches = append(s.patches, eventID)

	existing := s.events[calendarID][eventID]
	if existing == nil {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}

	merged := clone(existing)
	if err := json.NewDecoder(r.Body).Decode(merged); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	merged.Id = eventID
	merged.Updated = s.Now().UTC().Format(time.RFC3339)

	s.events[calendarID][eventID] = merged
	writeJSON(w, merged)
}

func clone(e *calendar.Event) *calendar.Event {
	b, _ := json.Marshal(e)
	var c calendar.Event
	json.Unmarshal(b, &c)
	return &c
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func eventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		return parseTime(dt.DateTime)
	}
	t, _ := time.ParseInLocation(time.DateOnly, dt.Date, time.Local)
	return t
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": reason,
			"errors":  []googleapi.ErrorItem{{Reason: reason, Message: reason}},
		},
	})
}
