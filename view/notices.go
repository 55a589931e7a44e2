package view

import (
	"fmt"
	"time"

	"github.com/rustyeddy/traderdash/internal/id"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// maxNotices bounds the notice backlog; older ones are dropped first.
const maxNotices = 50

// Notice is a user-visible outcome of a command.
type Notice struct {
	ID      string
	At      time.Time
	Level   Level
	Action  string
	Message string
	Err     error
}

func (n Notice) String() string {
	if n.Level == LevelError {
		return fmt.Sprintf("%s failed: %s", n.Action, n.Message)
	}
	if n.Message == "" {
		return n.Action + " done"
	}
	return fmt.Sprintf("%s: %s", n.Action, n.Message)
}

func newNotice(level Level, action, msg string, err error) Notice {
	return Notice{
		ID:      id.New(),
		At:      time.Now(),
		Level:   level,
		Action:  action,
		Message: msg,
		Err:     err,
	}
}
