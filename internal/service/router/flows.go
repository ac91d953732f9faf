package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/identity"
	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

const buttonsPerRow = 3

var flowPrompts = map[domain.Flow]string{
	domain.FlowJoin:  txtPickJoin,
	domain.FlowLeave: txtPickLeave,
	domain.FlowClaim: txtPickClaim,
	domain.FlowView:  txtPickView,
}

// ---------------------------------------------------------------------------
// Starting a flow
// ---------------------------------------------------------------------------

func (r *Router) startJoin(ctx context.Context, req *request) Reply {
	if _, err := identity.RequireNick(req.member); err != nil {
		return r.failure(ctx, "auction", err)
	}
	items, err := r.board.ListItems(ctx)
	if err != nil {
		return r.failure(ctx, "auction", err)
	}
	return r.startFlow(req, domain.FlowJoin, items)
}

// startOwnFlow opens a flow over the items nick is queued for.
func (r *Router) startOwnFlow(ctx context.Context, req *request, flow domain.Flow, nick string) Reply {
	positions, err := r.board.PositionsFor(ctx, nick)
	if err != nil {
		return r.failure(ctx, flow.String(), err)
	}
	var items []string
	for _, p := range positions {
		if p.Queued {
			items = append(items, p.Item)
		}
	}
	if len(items) == 0 {
		return Reply{Text: txtNotQueued, Ephemeral: true}
	}
	return r.startFlow(req, flow, items)
}

func (r *Router) startFlow(req *request, flow domain.Flow, items []string) Reply {
	if len(items) == 0 {
		return Reply{Text: txtNoItems, Ephemeral: true}
	}
	id := r.sessions.Start(req.Caller.ID, flow, items)
	view := domain.SelectionView{ID: id, Flow: flow, Universe: items}
	return Reply{Text: flowPrompts[flow], Keyboard: keyboard(req.Caller.ID, view)}
}

// keyboard renders the selection keyboard of a session.
func keyboard(owner int64, v domain.SelectionView) [][]KeyButton {
	base := callback{Flow: v.Flow, Owner: owner, Session: v.ID.String()[:sessionPrefix]}
	rows := make([][]KeyButton, 0, len(v.Universe)/buttonsPerRow+2)

	var row []KeyButton
	for i, item := range v.Universe {
		text := item
		if v.IsSelected(item) {
			text = "✅ " + item
		}
		cb := base
		cb.Action, cb.Index = actionToggle, i
		row = append(row, KeyButton{Text: text, Data: cb.encode()})
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	back, ok, cancel := base, base, base
	back.Action, ok.Action, cancel.Action = actionBack, actionConfirm, actionCancel
	rows = append(rows, []KeyButton{
		{Text: "↩️ Назад", Data: back.encode()},
		{Text: "✅ Подтвердить", Data: ok.encode()},
		{Text: "✖️ Отмена", Data: cancel.encode()},
	})
	return rows
}

// ---------------------------------------------------------------------------
// Button taps
// ---------------------------------------------------------------------------

// HandleButton applies a keyboard tap to the tapping member's session.
func (r *Router) HandleButton(ctx context.Context, btn Button) ButtonAnswer {
	cb, err := decodeCallback(btn.Data)
	if err != nil {
		return ButtonAnswer{}
	}
	if cb.Owner != btn.Caller.ID {
		return ButtonAnswer{Notice: txtForeignMenu}
	}
	if !r.gate.Allow(btn.Chat.ID, btn.TopicID, domain.ScopeAuction) {
		return ButtonAnswer{}
	}
	ctx = ctxutil.WithMemberID(ctx, btn.Caller.ID)

	view, err := r.sessions.View(cb.Owner, cb.Flow)
	if err != nil || !strings.HasPrefix(view.ID.String(), cb.Session) {
		return ButtonAnswer{Notice: txtStaleMenu}
	}

	switch cb.Action {
	case actionToggle:
		if cb.Index >= len(view.Universe) {
			return ButtonAnswer{Notice: txtStaleMenu}
		}
		item := view.Universe[cb.Index]
		on, err := r.sessions.Toggle(cb.Owner, cb.Flow, item)
		if err != nil {
			return r.buttonFailure(ctx, err)
		}
		notice := fmt.Sprintf(txtDeselected, item)
		if on {
			notice = fmt.Sprintf(txtSelected, item)
		}
		return r.refresh(cb, notice)

	case actionBack:
		if err := r.sessions.Reset(cb.Owner, cb.Flow); err != nil {
			return r.buttonFailure(ctx, err)
		}
		return r.refresh(cb, txtReset)

	case actionCancel:
		r.sessions.Cancel(cb.Owner, cb.Flow)
		return ButtonAnswer{Text: txtCancelled}

	case actionConfirm:
		return r.confirm(ctx, btn, cb, view)
	}
	return ButtonAnswer{}
}

func (r *Router) refresh(cb callback, notice string) ButtonAnswer {
	view, err := r.sessions.View(cb.Owner, cb.Flow)
	if err != nil {
		return ButtonAnswer{Notice: txtStaleMenu}
	}
	return ButtonAnswer{Notice: notice, Keyboard: keyboard(cb.Owner, view)}
}

func (r *Router) buttonFailure(ctx context.Context, err error) ButtonAnswer {
	text, known := errorText(err)
	if !known {
		r.log.ErrorContext(ctx, "button failed", slog.String("error", err.Error()))
	}
	return ButtonAnswer{Notice: text, Alert: !known}
}

// ---------------------------------------------------------------------------
// Committing a selection
// ---------------------------------------------------------------------------

func (r *Router) confirm(ctx context.Context, btn Button, cb callback, view domain.SelectionView) ButtonAnswer {
	if len(view.Selected) == 0 {
		return ButtonAnswer{Notice: txtEmptySelect}
	}

	// Resolve before closing the session so an unregistered member can
	// register and confirm again.
	var actor domain.Actor
	if cb.Flow != domain.FlowView {
		m, err := r.members.Resolve(ctx, btn.Caller)
		if err != nil {
			return r.buttonFailure(ctx, err)
		}
		if _, err := identity.RequireNick(m); err != nil {
			return ButtonAnswer{Notice: txtNotRegistered, Alert: true}
		}
		actor = r.members.Actor(btn.Caller, m)
	}

	items, err := r.sessions.Confirm(cb.Owner, cb.Flow)
	if errors.Is(err, domain.ErrEmptySelection) {
		return ButtonAnswer{Notice: txtEmptySelect}
	}
	if err != nil {
		return ButtonAnswer{Notice: txtStaleMenu}
	}

	if cb.Flow == domain.FlowView {
		text, err := r.queueBlocks(ctx, items)
		if err != nil {
			return r.buttonFailure(ctx, err)
		}
		return ButtonAnswer{Text: text}
	}

	var outcomes []domain.BatchOutcome
	switch cb.Flow {
	case domain.FlowJoin:
		outcomes = r.board.JoinMany(ctx, items, actor.Nick)
	case domain.FlowLeave:
		outcomes = r.board.LeaveMany(ctx, items, actor.Nick)
	case domain.FlowClaim:
		outcomes = r.board.ClaimMany(ctx, actor, items, "")
	}

	r.log.InfoContext(ctx, "selection committed",
		slog.String("flow", cb.Flow.String()),
		slog.Int64("member_id", cb.Owner),
		slog.Int("items", len(items)),
	)
	return ButtonAnswer{Notice: txtSaved, Text: batchText(cb.Flow, outcomes)}
}

// batchText renders one line per item plus a summary line.
func batchText(flow domain.Flow, outcomes []domain.BatchOutcome) string {
	lines := make([]string, 0, len(outcomes)+1)
	ok := 0
	for _, o := range outcomes {
		if o.Err != nil {
			lines = append(lines, outcomeText(o.Item, o.Err))
			continue
		}
		ok++
		switch {
		case flow == domain.FlowJoin && o.Requeued:
			lines = append(lines, fmt.Sprintf(txtRequeued, o.Item, o.Position))
		case flow == domain.FlowJoin:
			lines = append(lines, fmt.Sprintf(txtJoined, o.Item, o.Position))
		case flow == domain.FlowLeave && o.Removed:
			lines = append(lines, fmt.Sprintf(txtLeft, o.Item))
		case flow == domain.FlowClaim && o.Queued:
			lines = append(lines, fmt.Sprintf(txtRequeued, o.Item, o.Position))
		default:
			lines = append(lines, fmt.Sprintf(txtNotInQueue, o.Item))
		}
	}
	lines = append(lines, fmt.Sprintf(txtSummary, ok, len(outcomes)))
	return strings.Join(lines, "\n")
}
