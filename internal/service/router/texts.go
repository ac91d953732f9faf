package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/guildqueue/internal/domain"
	"github.com/heartmarshall/guildqueue/internal/service/identity"
	"github.com/heartmarshall/guildqueue/internal/service/queue"
	"github.com/heartmarshall/guildqueue/internal/service/scope"
)

const (
	txtHelp = "Команды:\n" +
		"• /ник <имя> — регистрация/смена ника\n" +
		"• /аук — выбор предметов аукциона (множественный + подтверждение)\n" +
		"• /очередь [предмет, ...] — показать очередь\n" +
		"• /место — мои места в очередях\n" +
		"• /получил [предмет] — отметить получение (в конец очереди)\n" +
		"• /выйти [предмет|все] — выйти из очереди\n" +
		"• /предметы — список предметов\n" +
		"\n" +
		"Лидер/офицеры: /кик <предмет> <ник>, /получил <предмет> <ник>, /добавить <предмет>, /удалить <предмет>\n" +
		"Привязка тем: /привязать_инфо, /привязать_аук, /привязать_отсутствие, /привязать_новости, /отвязать_все\n"

	txtNickUsage   = "Использование: /ник <имя>"
	txtNickCurrent = "Текущий ник: %s\nВведи новый ник: /ник <новый_ник>"
	txtNickSaved   = "Ник сохранён: %s"
	txtNickRenamed = "Ник сохранён: %s\nОбновлено записей в очередях: %d"

	txtPickJoin  = "🎯 Выбери предметы аукциона (можно несколько):"
	txtPickLeave = "🚪 Выбери очереди, из которых выйти:"
	txtPickClaim = "🎁 Отметь полученные предметы:"
	txtPickView  = "📋 Выбери очереди для просмотра:"

	txtNoItems     = "Список предметов пуст."
	txtNotQueued   = "Ты не стоишь ни в одной очереди."
	txtItemsHeader = "Предметы:"
	txtPosHeader   = "Твои места в очередях:"

	txtJoined     = "✅ %s — добавлен (место №%d)"
	txtRequeued   = "🔁 %s — перемещён в конец (место №%d)"
	txtLeft       = "✅ %s — ты вышел из очереди"
	txtNotInQueue = "%s — тебя нет в очереди"
	txtLeftAll    = "✅ Ты вышел из очередей: %s"
	txtKicked     = "✅ %s удалён из очереди «%s»."
	txtKickAbsent = "%s нет в очереди «%s»."
	txtClaimed    = "🔁 %s — %s получил, перемещён в конец (место №%d)"
	txtClaimNoop  = "%s — %s нет в очереди, ничего не изменилось"
	txtItemAdded  = "✅ Предмет добавлен: %s"
	txtItemExists = "Предмет уже есть: %s"
	txtItemGone   = "🗑 Предмет удалён: %s"
	txtItemAbsent = "Предмет не найден: %s"
	txtItemFailed = "⚠️ %s — %s"
	txtSummary    = "Готово: %d из %d."

	txtQueueHeader = "Очередь — %s:"
	txtQueueEmpty  = "Очередь — %s: пуста."
	txtQueueOne    = "Очередь пуста."
	txtQueueNone   = "Очередь пуста или предмет не найден."

	txtKickUsage   = "Использование: /кик <предмет> <ник>"
	txtAddUsage    = "Использование: /добавить <предмет>"
	txtRemoveUsage = "Использование: /удалить <предмет>"

	txtBound   = "✅ Привязано: тема %s.\nchat_id=%d\n%s_topic_id=%d"
	txtUnbound = "✅ Все привязки тем сняты. Бот остаётся привязан к группе."

	txtSelected    = "Выбрано: %s"
	txtDeselected  = "Снято: %s"
	txtReset       = "Выбор сброшен"
	txtCancelled   = "Выбор отменён."
	txtSaved       = "Сохранено"
	txtForeignMenu = "Это меню другого участника."
	txtStaleMenu   = "Меню устарело, вызови команду заново."

	txtNotRegistered = "Сначала зарегистрируй ник: /ник <имя>"
	txtForbidden     = "Недостаточно прав."
	txtUnknownItem   = "Предмет не найден."
	txtStoreDown     = "Таблица сейчас недоступна, попробуй позже."
	txtEmptySelect   = "Сначала выбери предметы"
	txtGroupOnly     = "Команда доступна только в группе."
	txtTopicOnly     = "Вызови команду внутри темы (форум-поста)."
	txtBadNick       = "Ник должен быть от 1 до %d символов."
	txtBadItem       = "Название предмета должно быть от 1 до %d байт."
	txtInvalid       = "Некорректный ввод."
	txtFailure       = "Что-то пошло не так, попробуй позже."
)

var scopeTitles = map[domain.ScopeRole]string{
	domain.ScopeInfo:    "ИНФО",
	domain.ScopeAuction: "АУКЦИОН",
	domain.ScopeAbsence: "ОТСУТСТВИЯ",
	domain.ScopeNews:    "НОВОСТИ",
}

// errorText maps an error to the message shown to the member. known is
// false for unclassified errors.
func errorText(err error) (text string, known bool) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		return txtNotRegistered, true
	case errors.Is(err, domain.ErrForbidden):
		return txtForbidden, true
	case errors.Is(err, domain.ErrUnknownItem):
		return txtUnknownItem, true
	case errors.Is(err, domain.ErrStoreUnavailable):
		return txtStoreDown, true
	case errors.Is(err, domain.ErrEmptySelection):
		return txtEmptySelect, true
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrItemNotInUniverse):
		return txtStaleMenu, true
	case errors.Is(err, scope.ErrGroupOnly):
		return txtGroupOnly, true
	case errors.Is(err, scope.ErrTopicRequired):
		return txtTopicOnly, true
	case errors.As(err, &ve):
		if len(ve.Errors) > 0 {
			switch ve.Errors[0].Field {
			case "nick":
				return fmt.Sprintf(txtBadNick, identity.MaxNickRunes), true
			case "item":
				return fmt.Sprintf(txtBadItem, queue.MaxItemNameBytes), true
			}
		}
		return txtInvalid, true
	}
	return txtFailure, false
}

// failure builds an ephemeral error reply and logs unclassified errors.
func (r *Router) failure(ctx context.Context, op string, err error) Reply {
	text, known := errorText(err)
	if !known {
		r.log.ErrorContext(ctx, "command failed", slog.String("op", op), slog.String("error", err.Error()))
	}
	return Reply{Text: text, Ephemeral: true}
}

// outcomeText renders the per-item error of a batch commit.
func outcomeText(item string, err error) string {
	text, _ := errorText(err)
	return fmt.Sprintf(txtItemFailed, item, strings.TrimSuffix(text, "."))
}

func queueBlock(item string, members []string) string {
	if len(members) == 0 {
		return fmt.Sprintf(txtQueueEmpty, item)
	}
	var b strings.Builder
	fmt.Fprintf(&b, txtQueueHeader, item)
	for i, m := range members {
		fmt.Fprintf(&b, "\n%d. %s", i+1, m)
	}
	return b.String()
}

func isUnknownItem(err error) bool {
	return errors.Is(err, domain.ErrUnknownItem)
}
