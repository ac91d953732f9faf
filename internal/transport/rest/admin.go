package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

type queueReader interface {
	Snapshot(ctx context.Context) ([]domain.ItemQueue, error)
}

type scopeReloader interface {
	Reload(ctx context.Context) error
	Binding() domain.ScopeBinding
}

type auditReader interface {
	Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

// AdminHandler serves the maintenance endpoints. Routes are expected to sit
// behind middleware.AdminAuth.
type AdminHandler struct {
	board queueReader
	scope scopeReloader
	audit auditReader
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler. audit may be nil.
func NewAdminHandler(board queueReader, scope scopeReloader, audit auditReader, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		board: board,
		scope: scope,
		audit: audit,
		log:   logger.With("handler", "admin"),
	}
}

type queueView struct {
	Item    string   `json:"item"`
	Members []string `json:"members"`
}

// Queues returns every item with its ordered waiting list.
// GET /admin/queues
func (h *AdminHandler) Queues(w http.ResponseWriter, r *http.Request) {
	snap, err := h.board.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, "snapshot queues", err)
		return
	}

	out := make([]queueView, 0, len(snap))
	for _, q := range snap {
		out = append(out, queueView{Item: q.Item, Members: q.Members})
	}
	writeJSON(w, http.StatusOK, out)
}

type scopeView struct {
	ChatID *int64         `json:"chat_id"`
	Topics map[string]int `json:"topics"`
}

// ReloadScope re-reads the scope binding from storage and returns it.
// POST /admin/scope/reload
func (h *AdminHandler) ReloadScope(w http.ResponseWriter, r *http.Request) {
	if err := h.scope.Reload(r.Context()); err != nil {
		h.fail(w, r, "reload scope", err)
		return
	}

	b := h.scope.Binding()
	view := scopeView{ChatID: b.ChatID, Topics: make(map[string]int, len(b.Topics))}
	for role, topic := range b.Topics {
		view.Topics[role.String()] = topic
	}

	subject, _ := ctxutil.AdminSubjectFromCtx(r.Context())
	h.log.InfoContext(r.Context(), "scope reloaded", slog.String("admin", subject))
	writeJSON(w, http.StatusOK, view)
}

type auditView struct {
	At       string `json:"at"`
	MemberID int64  `json:"member_id"`
	Nick     string `json:"nick"`
	Action   string `json:"action"`
	Details  string `json:"details"`
}

// Audit returns the newest audit records.
// GET /admin/audit?limit=50
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotFound, "audit log is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	recs, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "recent audit", err)
		return
	}

	out := make([]auditView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, auditView{
			At:       rec.At.UTC().Format(time.RFC3339),
			MemberID: rec.MemberID,
			Nick:     rec.Nick,
			Action:   string(rec.Action),
			Details:  rec.Details,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		h.log.WarnContext(r.Context(), op, slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.log.ErrorContext(r.Context(), op, slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
