package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/identity"
)

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func (r *Router) nick(ctx context.Context, req *request) Reply {
	if req.args == "" {
		if req.member.IsRegistered() {
			return Reply{Text: fmt.Sprintf(txtNickCurrent, req.member.Nick)}
		}
		return Reply{Text: txtNickUsage, Ephemeral: true}
	}

	res, err := r.members.ChangeNick(ctx, req.Caller, req.args)
	if err != nil {
		return r.failure(ctx, "nick", err)
	}
	if res.Rewritten > 0 {
		return Reply{Text: fmt.Sprintf(txtNickRenamed, res.Member.Nick, res.Rewritten)}
	}
	return Reply{Text: fmt.Sprintf(txtNickSaved, res.Member.Nick)}
}

// ---------------------------------------------------------------------------
// Queue commands
// ---------------------------------------------------------------------------

func (r *Router) leave(ctx context.Context, req *request) Reply {
	nick, err := identity.RequireNick(req.member)
	if err != nil {
		return r.failure(ctx, "leave", err)
	}

	switch strings.ToLower(req.args) {
	case "":
		return r.startOwnFlow(ctx, req, domain.FlowLeave, nick)
	case "all", "все":
		res, err := r.board.LeaveAll(ctx, nick)
		if err != nil {
			return r.failure(ctx, "leave", err)
		}
		if len(res.Removed) == 0 {
			return Reply{Text: txtNotQueued, Ephemeral: true}
		}
		return Reply{Text: fmt.Sprintf(txtLeftAll, strings.Join(res.Removed, ", "))}
	}

	res, err := r.board.Leave(ctx, req.args, nick)
	if err != nil {
		return r.failure(ctx, "leave", err)
	}
	if len(res.Removed) == 0 {
		return Reply{Text: fmt.Sprintf(txtNotInQueue, domain.NormalizeName(req.args)), Ephemeral: true}
	}
	return Reply{Text: fmt.Sprintf(txtLeft, res.Removed[0])}
}

func (r *Router) kick(ctx context.Context, req *request) Reply {
	if !req.actor.Role.IsPrivileged() {
		return r.failure(ctx, "kick", domain.ErrForbidden)
	}
	item, nick, err := r.splitItemArgs(ctx, req.args)
	if err != nil {
		return r.failure(ctx, "kick", err)
	}
	if item == "" || nick == "" {
		return Reply{Text: txtKickUsage, Ephemeral: true}
	}

	res, err := r.board.Kick(ctx, req.actor, item, nick)
	if err != nil {
		return r.failure(ctx, "kick", err)
	}
	if len(res.Removed) == 0 {
		return Reply{Text: fmt.Sprintf(txtKickAbsent, nick, item), Ephemeral: true}
	}
	return Reply{Text: fmt.Sprintf(txtKicked, nick, res.Removed[0])}
}

func (r *Router) claim(ctx context.Context, req *request) Reply {
	if req.args == "" {
		nick, err := identity.RequireNick(req.member)
		if err != nil {
			return r.failure(ctx, "claim", err)
		}
		return r.startOwnFlow(ctx, req, domain.FlowClaim, nick)
	}

	item, nick, err := r.splitItemArgs(ctx, req.args)
	if err != nil {
		return r.failure(ctx, "claim", err)
	}
	res, err := r.board.Claim(ctx, req.actor, item, nick)
	if err != nil {
		return r.failure(ctx, "claim", err)
	}
	who := nick
	if who == "" {
		who = req.actor.Nick
	}
	if !res.Queued {
		return Reply{Text: fmt.Sprintf(txtClaimNoop, res.Item, who), Ephemeral: true}
	}
	return Reply{Text: fmt.Sprintf(txtClaimed, res.Item, who, res.Position)}
}

func (r *Router) positions(ctx context.Context, req *request) Reply {
	nick, err := identity.RequireNick(req.member)
	if err != nil {
		return r.failure(ctx, "positions", err)
	}
	positions, err := r.board.PositionsFor(ctx, nick)
	if err != nil {
		return r.failure(ctx, "positions", err)
	}

	var b strings.Builder
	b.WriteString(txtPosHeader)
	n := 0
	for _, p := range positions {
		if p.Queued {
			fmt.Fprintf(&b, "\n• %s — №%d", p.Item, p.Position)
			n++
		}
	}
	if n == 0 {
		return Reply{Text: txtNotQueued}
	}
	return Reply{Text: b.String()}
}

func (r *Router) queue(ctx context.Context, req *request) Reply {
	if req.args == "" {
		items, err := r.board.ListItems(ctx)
		if err != nil {
			return r.failure(ctx, "queue", err)
		}
		return r.startFlow(req, domain.FlowView, items)
	}

	var names []string
	for _, part := range strings.Split(req.args, ",") {
		if part = domain.NormalizeName(part); part != "" {
			names = append(names, part)
		}
	}

	if len(names) == 1 {
		members, err := r.board.Queue(ctx, names[0])
		switch {
		case err == nil && len(members) == 0:
			return Reply{Text: txtQueueOne}
		case err == nil:
			return Reply{Text: queueBlock(names[0], members)}
		case isUnknownItem(err):
			return Reply{Text: txtQueueNone, Ephemeral: true}
		default:
			return r.failure(ctx, "queue", err)
		}
	}

	blocks, err := r.queueBlocks(ctx, names)
	if err != nil {
		return r.failure(ctx, "queue", err)
	}
	return Reply{Text: blocks}
}

// queueBlocks renders several queues. Unknown items get an error line.
func (r *Router) queueBlocks(ctx context.Context, items []string) (string, error) {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		members, err := r.board.Queue(ctx, item)
		if isUnknownItem(err) {
			blocks = append(blocks, outcomeText(item, err))
			continue
		}
		if err != nil {
			return "", err
		}
		blocks = append(blocks, queueBlock(item, members))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

func (r *Router) items(ctx context.Context, _ *request) Reply {
	items, err := r.board.ListItems(ctx)
	if err != nil {
		return r.failure(ctx, "items", err)
	}
	if len(items) == 0 {
		return Reply{Text: txtNoItems}
	}
	var b strings.Builder
	b.WriteString(txtItemsHeader)
	for _, item := range items {
		b.WriteString("\n• ")
		b.WriteString(item)
	}
	return Reply{Text: b.String()}
}

func (r *Router) addItem(ctx context.Context, req *request) Reply {
	if req.args == "" {
		return Reply{Text: txtAddUsage, Ephemeral: true}
	}
	created, err := r.board.AddItem(ctx, req.actor, req.args)
	if err != nil {
		return r.failure(ctx, "add_item", err)
	}
	name := domain.NormalizeName(req.args)
	if !created {
		return Reply{Text: fmt.Sprintf(txtItemExists, name), Ephemeral: true}
	}
	return Reply{Text: fmt.Sprintf(txtItemAdded, name)}
}

func (r *Router) removeItem(ctx context.Context, req *request) Reply {
	if req.args == "" {
		return Reply{Text: txtRemoveUsage, Ephemeral: true}
	}
	removed, err := r.board.RemoveItem(ctx, req.actor, req.args)
	if err != nil {
		return r.failure(ctx, "remove_item", err)
	}
	name := domain.NormalizeName(req.args)
	if !removed {
		return Reply{Text: fmt.Sprintf(txtItemAbsent, name), Ephemeral: true}
	}
	return Reply{Text: fmt.Sprintf(txtItemGone, name)}
}

// ---------------------------------------------------------------------------
// Scope binding
// ---------------------------------------------------------------------------

func (r *Router) bind(ctx context.Context, req *request, role domain.ScopeRole) Reply {
	b, err := r.gate.Bind(ctx, req.actor, req.Chat, req.TopicID, role)
	if err != nil {
		return r.failure(ctx, "bind", err)
	}
	topic, _ := b.Topic(role)
	return Reply{Text: fmt.Sprintf(txtBound, scopeTitles[role], *b.ChatID, role, topic)}
}

func (r *Router) unbindAll(ctx context.Context, req *request) Reply {
	if err := r.gate.UnbindAll(ctx, req.actor, req.Chat); err != nil {
		return r.failure(ctx, "unbind", err)
	}
	return Reply{Text: txtUnbound}
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// splitItemArgs splits "<item> <rest>". Item names may contain spaces, so
// the longest item name that prefixes args wins; otherwise the first word
// is the item.
func (r *Router) splitItemArgs(ctx context.Context, args string) (item, rest string, err error) {
	args = domain.NormalizeName(args)
	if args == "" {
		return "", "", nil
	}
	items, err := r.board.ListItems(ctx)
	if err != nil {
		return "", "", err
	}
	for _, name := range items {
		if len(name) <= len(item) {
			continue
		}
		if args == name || strings.HasPrefix(args, name+" ") {
			item = name
		}
	}
	if item == "" {
		item, rest, _ = strings.Cut(args, " ")
		return item, rest, nil
	}
	return item, strings.TrimSpace(args[len(item):]), nil
}
