package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/stats"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// intParam parses an integer query parameter, falling back on absence or
// malformed input.
func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func yearParam(r *http.Request) int {
	return intParam(r, "year", 0)
}

// chatIDParam parses the {chatID} path segment.
func chatIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	return id, err == nil
}

// contactHandles resolves the {ident} path segment (contact name or raw
// handle) to the handles to query.
func (s *Server) contactHandles(r *http.Request) []string {
	return s.book.Resolve(chi.URLParam(r, "ident"))
}

// OverviewResponse is the app-wide statistics summary.
type OverviewResponse struct {
	TotalMessages  int64             `json:"totalMessages"`
	Sent           int64             `json:"sent"`
	Received       int64             `json:"received"`
	MessagesByYear []stats.YearCount `json:"messagesByYear"`
	MostActiveYear *stats.YearCount  `json:"mostActiveYear"`
	AvgPerDay      float64           `json:"avgPerDay"`
}

// handleOverview returns app-wide direct-message statistics.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sr := s.engine.SentVsReceived(ctx)
	resp := OverviewResponse{
		TotalMessages:  s.engine.TotalMessages(ctx),
		Sent:           sr.Sent,
		Received:       sr.Received,
		MessagesByYear: s.engine.MessagesByYear(ctx),
		MostActiveYear: s.engine.MostActiveYear(ctx),
		AvgPerDay:      s.engine.AverageMessagesPerDay(ctx),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAllWords returns the top words you have sent across all chats.
func (s *Server) handleAllWords(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 50)
	words := s.engine.AllWords(r.Context(), limit)
	if words == nil {
		words = []stats.TokenCount{}
	}
	writeJSON(w, http.StatusOK, words)
}

// ContactEntry is one ranked contact, enriched with any configured name.
type ContactEntry struct {
	stats.ContactCount
	Name string `json:"name,omitempty"`
}

// handleTopContacts returns contacts ranked by message volume.
func (s *Server) handleTopContacts(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 20)
	ranked := s.engine.TopContacts(r.Context(), limit)
	out := make([]ContactEntry, len(ranked))
	for i, cc := range ranked {
		out[i] = ContactEntry{ContactCount: cc}
		if c := s.book.ByHandle(cc.HandleID); c != nil {
			out[i].Name = c.Name
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleContactStats returns the statistics block for one contact. Multiple
// handles merge; the year filter applies to single-handle contacts only.
func (s *Server) handleContactStats(w http.ResponseWriter, r *http.Request) {
	handles := s.contactHandles(r)
	var cs *stats.ContactStats
	if len(handles) == 1 {
		cs = s.engine.ContactStats(r.Context(), handles[0], yearParam(r))
	} else {
		cs = s.engine.CombinedContactStats(r.Context(), handles)
	}
	if cs == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot_unavailable", "Snapshot not available")
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleContactWords(w http.ResponseWriter, r *http.Request) {
	sender := filter.ParseSender(r.URL.Query().Get("sender"))
	words := s.engine.ContactWords(r.Context(), s.contactHandles(r), intParam(r, "limit", 50), sender)
	if words == nil {
		words = []stats.TokenCount{}
	}
	writeJSON(w, http.StatusOK, words)
}

func (s *Server) handleContactEmojis(w http.ResponseWriter, r *http.Request) {
	sender := filter.ParseSender(r.URL.Query().Get("sender"))
	emojis := s.engine.ContactEmojis(r.Context(), s.contactHandles(r), intParam(r, "limit", 50), sender)
	if emojis == nil {
		emojis = []stats.TokenCount{}
	}
	writeJSON(w, http.StatusOK, emojis)
}

func (s *Server) handleContactReactions(w http.ResponseWriter, r *http.Request) {
	tally := s.engine.ContactReactions(r.Context(), s.contactHandles(r), yearParam(r))
	writeJSON(w, http.StatusOK, tally)
}

func (s *Server) handleContactSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "Query parameter q is required")
		return
	}
	sender := filter.ParseSender(r.URL.Query().Get("sender"))
	result := s.engine.SearchContactMessages(r.Context(), s.contactHandles(r), term,
		intParam(r, "limit", 50), intParam(r, "offset", 0), sender)
	writeJSON(w, http.StatusOK, result)
}

// GroupEntry is one ranked group chat, with contact names substituted into
// the participant sample where known.
type GroupEntry struct {
	stats.GroupChatSummary
}

// handleTopGroups returns group chats ranked by message volume.
func (s *Server) handleTopGroups(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 20)
	ranked := s.engine.TopGroupChats(r.Context(), limit)
	out := make([]GroupEntry, len(ranked))
	for i, gc := range ranked {
		out[i] = GroupEntry{GroupChatSummary: gc}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGroupStats(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	gs := s.engine.GroupChatStats(r.Context(), chatID, yearParam(r))
	if gs == nil {
		writeError(w, http.StatusNotFound, "not_found", "No such group chat")
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (s *Server) handleGroupParticipants(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	out := s.engine.GroupChatParticipants(r.Context(), chatID, yearParam(r))
	if out == nil {
		out = []stats.ParticipantCount{}
	}
	writeJSON(w, http.StatusOK, out)
}

// groupPerson parses the person query parameter for group-scoped routes.
// An absent parameter applies no restriction.
func groupPerson(r *http.Request) filter.PersonFilter {
	return filter.ParsePerson(r.URL.Query().Get("person"))
}

func (s *Server) handleGroupWords(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	words := s.engine.GroupChatWords(r.Context(), chatID, intParam(r, "limit", 50), groupPerson(r))
	if words == nil {
		words = []stats.TokenCount{}
	}
	writeJSON(w, http.StatusOK, words)
}

func (s *Server) handleGroupEmojis(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	emojis := s.engine.GroupChatEmojis(r.Context(), chatID, intParam(r, "limit", 50), groupPerson(r))
	if emojis == nil {
		emojis = []stats.TokenCount{}
	}
	writeJSON(w, http.StatusOK, emojis)
}

func (s *Server) handleGroupReactions(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	tally := s.engine.GroupChatReactions(r.Context(), chatID, groupPerson(r), yearParam(r))
	writeJSON(w, http.StatusOK, tally)
}

func (s *Server) handleGroupSearch(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_chat_id", "Chat ID must be an integer")
		return
	}
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "Query parameter q is required")
		return
	}
	result := s.engine.SearchGroupChatMessages(r.Context(), chatID, term,
		intParam(r, "limit", 50), intParam(r, "offset", 0), groupPerson(r))
	writeJSON(w, http.StatusOK, result)
}
