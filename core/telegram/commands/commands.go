package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	// Private restricts the command to one-on-one chats.
	Private bool
	Aliases []string
	// Args declares the argument schema parsed before the handler runs.
	Args []Arg
}
