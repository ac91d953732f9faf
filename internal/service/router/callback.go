package router

import (
	"errors"
	"strconv"
	"strings"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Callback data layout: sel:<flow>:<owner>:<session prefix>:<action>[:<index>].
const (
	callbackPrefix = "sel"
	sessionPrefix  = 8
)

// Keyboard actions.
const (
	actionToggle  = "t"
	actionBack    = "b"
	actionConfirm = "o"
	actionCancel  = "c"
)

var errBadCallback = errors.New("malformed callback data")

type callback struct {
	Flow    domain.Flow
	Owner   int64
	Session string
	Action  string
	Index   int
}

func (c callback) encode() string {
	parts := []string{
		callbackPrefix,
		c.Flow.String(),
		strconv.FormatInt(c.Owner, 10),
		c.Session,
		c.Action,
	}
	if c.Action == actionToggle {
		parts = append(parts, strconv.Itoa(c.Index))
	}
	return strings.Join(parts, ":")
}

func decodeCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 5 || parts[0] != callbackPrefix {
		return callback{}, errBadCallback
	}

	c := callback{Flow: domain.Flow(parts[1]), Session: parts[3], Action: parts[4]}
	if !c.Flow.IsValid() || len(c.Session) != sessionPrefix {
		return callback{}, errBadCallback
	}
	owner, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return callback{}, errBadCallback
	}
	c.Owner = owner

	switch c.Action {
	case actionToggle:
		if len(parts) != 6 {
			return callback{}, errBadCallback
		}
		idx, err := strconv.Atoi(parts[5])
		if err != nil || idx < 0 {
			return callback{}, errBadCallback
		}
		c.Index = idx
	case actionBack, actionConfirm, actionCancel:
		if len(parts) != 5 {
			return callback{}, errBadCallback
		}
	default:
		return callback{}, errBadCallback
	}
	return c, nil
}

// IsSelectionCallback reports whether data belongs to a selection keyboard.
func IsSelectionCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix+":")
}
