package router

import (
	"strings"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

type commandID string

const (
	cmdHelp       commandID = "help"
	cmdNick       commandID = "nick"
	cmdAuction    commandID = "auction"
	cmdLeave      commandID = "leave"
	cmdKick       commandID = "kick"
	cmdClaim      commandID = "claim"
	cmdAddItem    commandID = "add_item"
	cmdRemoveItem commandID = "remove_item"
	cmdItems      commandID = "items"
	cmdPositions  commandID = "positions"
	cmdQueue      commandID = "queue"
	cmdBindInfo   commandID = "bind_info"
	cmdBindAuk    commandID = "bind_auction"
	cmdBindAbs    commandID = "bind_absence"
	cmdBindNews   commandID = "bind_news"
	cmdUnbindAll  commandID = "unbind_all"
)

type commandSpec struct {
	id      commandID
	latin   string
	aliases []string
	scope   domain.ScopeRole // empty: allowed in any chat
	menu    string           // command menu description; empty hides it
}

var commandSpecs = []commandSpec{
	{id: cmdHelp, latin: "help_master", aliases: []string{"start", "помощь"}, menu: "Список команд"},
	{id: cmdNick, latin: "nik", aliases: []string{"ник"}, scope: domain.ScopeInfo, menu: "Регистрация/смена ника"},
	{id: cmdAuction, latin: "auk", aliases: []string{"аук"}, scope: domain.ScopeAuction, menu: "Выбор предметов аукциона"},
	{id: cmdLeave, latin: "leave", aliases: []string{"выйти"}, scope: domain.ScopeAuction, menu: "Выйти из очереди"},
	{id: cmdKick, latin: "kick", aliases: []string{"кик"}, scope: domain.ScopeAuction},
	{id: cmdClaim, latin: "claim", aliases: []string{"получил"}, scope: domain.ScopeAuction, menu: "Отметить получение предмета"},
	{id: cmdAddItem, latin: "add_item", aliases: []string{"добавить"}, scope: domain.ScopeAuction},
	{id: cmdRemoveItem, latin: "remove_item", aliases: []string{"удалить"}, scope: domain.ScopeAuction},
	{id: cmdItems, latin: "items", aliases: []string{"предметы"}, scope: domain.ScopeAuction, menu: "Список предметов"},
	{id: cmdPositions, latin: "pos", aliases: []string{"место"}, scope: domain.ScopeAuction, menu: "Мои места в очередях"},
	{id: cmdQueue, latin: "ochered", aliases: []string{"очередь"}, scope: domain.ScopeAuction, menu: "Показать очередь"},
	{id: cmdBindInfo, latin: "privyazat_info", aliases: []string{"привязать_инфо"}, menu: "Привязать тему персонажей"},
	{id: cmdBindAuk, latin: "privyazat_auk", aliases: []string{"привязать_аук"}, menu: "Привязать тему аукциона"},
	{id: cmdBindAbs, latin: "privyazat_absence", aliases: []string{"привязать_отсутствие"}},
	{id: cmdBindNews, latin: "privyazat_news", aliases: []string{"привязать_новости"}},
	{id: cmdUnbindAll, latin: "otvyazat_vse", aliases: []string{"отвязать_все"}, menu: "Сбросить привязки"},
}

var commandIndex = func() map[string]commandSpec {
	idx := make(map[string]commandSpec)
	for _, c := range commandSpecs {
		idx[c.latin] = c
		for _, a := range c.aliases {
			idx[a] = c
		}
	}
	return idx
}()

// bindRoles maps bind commands to the scope role they bind.
var bindRoles = map[commandID]domain.ScopeRole{
	cmdBindInfo: domain.ScopeInfo,
	cmdBindAuk:  domain.ScopeAuction,
	cmdBindAbs:  domain.ScopeAbsence,
	cmdBindNews: domain.ScopeNews,
}

// MenuEntry is one entry of the bot command menu.
type MenuEntry struct {
	Command     string
	Description string
}

// Menu returns the commands to register in the chat client menu.
func Menu() []MenuEntry {
	out := make([]MenuEntry, 0, len(commandSpecs))
	for _, c := range commandSpecs {
		if c.menu != "" {
			out = append(out, MenuEntry{Command: c.latin, Description: c.menu})
		}
	}
	return out
}

// parseCommand splits "/name@bot args" into the command spec and its
// argument string. A command addressed to another bot is not recognized.
func parseCommand(text, botUsername string) (commandSpec, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return commandSpec{}, "", false
	}

	head, args, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		args = head[i+1:] + " " + args
		head = head[:i]
	}
	name, target, addressed := strings.Cut(head, "@")
	if addressed && botUsername != "" && !strings.EqualFold(target, botUsername) {
		return commandSpec{}, "", false
	}

	spec, ok := commandIndex[strings.ToLower(name)]
	if !ok {
		return commandSpec{}, "", false
	}
	return spec, strings.TrimSpace(args), true
}
