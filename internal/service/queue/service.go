// Package queue keeps per-item FIFO waiting lists inside a shared tabular
// store and serializes every read-modify-write of it.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

type tabularStore interface {
	ReadMatrix(ctx context.Context, sheet string) ([][]string, error)
	WriteMatrix(ctx context.Context, sheet string, rows [][]string) error
	ListSheets(ctx context.Context) ([]string, error)
	CreateSheet(ctx context.Context, sheet string) error
}

type auditSink interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type recorder interface {
	QueueOp(op, outcome string)
	StoreCall(call string, took time.Duration, err error)
}

// MaxItemNameBytes bounds item names so they fit in chat buttons.
const MaxItemNameBytes = 48

// Operation outcomes reported to the recorder.
const (
	outcomeOK        = "ok"
	outcomeNoop      = "noop"
	outcomeRejected  = "rejected"
	outcomeStoreFail = "store_error"
)

// Config holds the board settings.
type Config struct {
	Sheet        string
	DefaultItems []string
	StoreTimeout time.Duration
}

// Service is the queue board.
type Service struct {
	store tabularStore
	audit auditSink
	rec   recorder
	cfg   Config
	log   *slog.Logger

	// sem is the write coordinator: a one-slot semaphore held for the whole
	// read-modify-write cycle.
	sem chan struct{}
}

// NewService creates a new queue board. audit and rec may be nil.
func NewService(log *slog.Logger, store tabularStore, audit auditSink, rec recorder, cfg Config) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 10 * time.Second
	}
	return &Service{
		store: store,
		audit: audit,
		rec:   rec,
		cfg:   cfg,
		log:   log.With("service", "queue"),
		sem:   make(chan struct{}, 1),
	}
}

// ---------------------------------------------------------------------------
// Write coordination
// ---------------------------------------------------------------------------

type lockCtxKey struct{}

func (s *Service) acquire(ctx context.Context) (release func(), err error) {
	if held, _ := ctx.Value(lockCtxKey{}).(*Service); held == s {
		return func() {}, nil
	}
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("queue: wait for writer: %w", ctx.Err())
	}
}

// Exclusive runs fn while holding the write coordinator. Board mutations
// called with the context passed to fn do not wait for it again. It lets a
// caller keep the board locked until its own transaction commits.
func (s *Service) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(context.WithValue(ctx, lockCtxKey{}, s))
}

// mutate runs one serialized read-modify-write cycle. fn edits the board and
// reports whether anything changed; nothing is written when it did not or
// when fn fails. Audit records returned by fn are logged after the write.
func (s *Service) mutate(ctx context.Context, op string, fn func(b *board) (bool, []domain.AuditRecord, error)) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	b, err := s.load(ctx)
	if err != nil {
		s.rec.QueueOp(op, outcomeStoreFail)
		return err
	}

	changed, records, err := fn(b)
	if err != nil {
		s.rec.QueueOp(op, outcomeRejected)
		return err
	}
	if !changed {
		s.rec.QueueOp(op, outcomeNoop)
		return nil
	}

	if err := s.save(ctx, b); err != nil {
		s.rec.QueueOp(op, outcomeStoreFail)
		s.log.ErrorContext(ctx, "queue write failed", slog.String("op", op), slog.String("error", err.Error()))
		return err
	}
	s.rec.QueueOp(op, outcomeOK)

	for _, r := range records {
		s.record(ctx, r)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Store access
// ---------------------------------------------------------------------------

// load reads the board. A missing sheet is an empty board.
func (s *Service) load(ctx context.Context) (*board, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.store.ReadMatrix(ctx, s.cfg.Sheet)
	s.rec.StoreCall("read", time.Since(start), err)
	if errors.Is(err, domain.ErrNotFound) {
		return parseBoard(nil), nil
	}
	if err != nil {
		return nil, domain.NewStoreError("read", err)
	}
	return parseBoard(rows), nil
}

func (s *Service) save(ctx context.Context, b *board) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.WriteMatrix(ctx, s.cfg.Sheet, b.render())
	s.rec.StoreCall("write", time.Since(start), err)
	return domain.NewStoreError("write", err)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// record writes an audit record. Failures are logged and swallowed.
func (s *Service) record(ctx context.Context, r domain.AuditRecord) {
	if s.audit == nil {
		return
	}
	if r.MemberID == 0 {
		r.MemberID, _ = ctxutil.MemberIDFromCtx(ctx)
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
	if err := s.audit.Log(ctx, r); err != nil {
		s.log.WarnContext(ctx, "audit log failed",
			slog.String("action", r.Action.String()),
			slog.String("error", err.Error()),
		)
	}
}

func auditRecord(action domain.AuditAction, nick, details string) domain.AuditRecord {
	return domain.AuditRecord{Nick: nick, Action: action, Details: details}
}

// lookup finds item on the board or returns ErrUnknownItem.
func lookup(b *board, item string) (int, error) {
	j := b.index(domain.NormalizeName(item))
	if j < 0 {
		return -1, fmt.Errorf("item %q: %w", item, domain.ErrUnknownItem)
	}
	return j, nil
}

func requireNick(nick string) (string, error) {
	nick = domain.NormalizeName(nick)
	if nick == "" {
		return "", domain.NewValidationError("nick", "required")
	}
	return nick, nil
}

func requirePrivileged(actor domain.Actor) error {
	if !actor.Role.IsPrivileged() {
		return fmt.Errorf("role %s: %w", actor.Role, domain.ErrForbidden)
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) QueueOp(string, string)                 {}
func (nopRecorder) StoreCall(string, time.Duration, error) {}
