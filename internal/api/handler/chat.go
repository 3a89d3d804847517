package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/support-chat/internal/api/middleware"
	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/service"
)

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendRequest struct {
	Message string `json:"message"`
}

type sendResponse struct {
	Response string `json:"response"`
}

// Send exchanges one message with the assistant
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "no token, authorization denied")
		return
	}

	var input sendRequest
	if !decodeBody(w, r, &input) {
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), userID, input.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, sendResponse{Response: reply})
}

// History returns one page of the user's conversation
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "no token, authorization denied")
		return
	}

	query, err := parseHistoryQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.chatService.GetHistory(r.Context(), userID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, page)
}

// parseHistoryQuery reads limit, before and beforeSeq. A missing or
// non-positive limit falls back to the default page size. Any beforeSeq,
// even without before, selects (timestamp, seq) paging.
func parseHistoryQuery(r *http.Request) (domain.HistoryQuery, error) {
	q := r.URL.Query()

	var query domain.HistoryQuery
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		query.Limit = n
	}

	var seq int64
	if rawSeq := strings.TrimSpace(q.Get("beforeSeq")); rawSeq != "" {
		n, err := strconv.ParseInt(rawSeq, 10, 64)
		if err != nil || n < 0 {
			return query, domain.NewValidationError("invalid beforeSeq cursor")
		}
		seq = n
		query.SeqPaging = true
	}

	raw := strings.TrimSpace(q.Get("before"))
	if raw == "" {
		return query, nil
	}

	before, err := parseTimestamp(raw)
	if err != nil {
		return query, domain.NewValidationError("invalid before cursor")
	}

	query.Cursor = &domain.Cursor{Before: before, BeforeSeq: seq}
	return query, nil
}

// parseTimestamp accepts RFC 3339 or Unix milliseconds. Stored timestamps
// have millisecond precision, so finer input is truncated.
func parseTimestamp(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
