package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/commands"
	"dialogbot/core/telegram/dialog"
	"dialogbot/core/telegram/format"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/users"
)

func (a *app) registerCommands() {
	a.reg.RegisterCommand("/start", commands.Command{
		Description: "Show the welcome message",
		Handler:     a.handleStart,
		Aliases:     []string{"/help"},
	})
	a.reg.RegisterCommand("/survey", commands.Command{
		Description: "Start the questionnaire",
		Handler:     a.survey.StartHandler(),
		Private:     true,
	})
	a.reg.RegisterCommand("/cancel", commands.Command{
		Description: "Cancel the current operation",
		Handler:     dialog.CancelHandler(a.store, a.cfg.Dialog.CancelText),
	})
	a.reg.RegisterCommand("/users", commands.Command{
		Description: "List known users",
		AdminOnly:   true,
		Handler: func(c tele.Context) error {
			return a.pager.Send(c, 1)
		},
	})
	a.reg.RegisterCommand("/promote", commands.Command{
		Description: "Grant admin rights to a user",
		AdminOnly:   true,
		Args: []commands.Arg{
			{Name: "user_id", Kind: commands.KindInt, Required: true, Description: "Telegram ID of the user to promote"},
		},
		Handler: a.handlePromote,
	})
	a.reg.RegisterCommand("/promoteself", commands.Command{
		Description: "Claim admin rights as the configured owner",
		Hidden:      true,
		Handler:     a.handlePromoteSelf,
	})
	a.reg.RegisterCommand("/announce", commands.Command{
		Description: "Send a message to every known user",
		AdminOnly:   true,
		Args: []commands.Arg{
			{Name: "text", Kind: commands.KindString, Required: true, Variadic: true, Description: "Announcement text"},
		},
		Handler: a.handleAnnounce,
	})

	a.reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, "I did not understand that. Send /help to see what I can do.")
	})
}

func (a *app) handleStart(c tele.Context) error {
	var b strings.Builder
	name := "there"
	if u, ok := users.FromContext(c); ok {
		name = u.FullName()
	}
	// User names can carry markdown metacharacters.
	if escaped, err := format.EscapeMarkdown(name, format.MarkdownV1); err == nil {
		name = escaped
	}
	fmt.Fprintf(&b, "Hello, %s!\n\n", name)
	b.WriteString("Available commands:\n")
	for _, cmd := range a.reg.ListCommands(!users.IsAdmin(c)) {
		fmt.Fprintf(&b, "/%s - %s\n", cmd.Text, cmd.Description)
	}
	return tghelpers.SendMD(c, b.String())
}

func (a *app) handlePromote(c tele.Context) error {
	args := commands.ArgsFrom(c)
	id, _ := args["user_id"].(int64)

	ctx := tghelpers.BuildContext(c)
	if err := a.users.SetAdmin(ctx, id, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tghelpers.SendText(c, fmt.Sprintf("I have never seen user %d.", id))
		}
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("User %d is now an administrator.", id))
}

func (a *app) handlePromoteSelf(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || sender.ID != a.cfg.Telegram.AdminID {
		return tghelpers.SendText(c, "This command is limited to the bot owner.")
	}
	ctx := tghelpers.BuildContext(c)
	if err := a.users.SetAdmin(ctx, sender.ID, true); err != nil {
		return err
	}
	return tghelpers.SendText(c, "You are now an administrator.")
}

func (a *app) handleAnnounce(c tele.Context) error {
	args := commands.ArgsFrom(c)
	tokens, _ := args["text"].([]any)
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if s, ok := t.(string); ok {
			words = append(words, s)
		}
	}
	text := strings.Join(words, " ")

	ctx := tghelpers.BuildContext(c)
	ids, err := a.users.ListIDs(ctx)
	if err != nil {
		return err
	}
	if err := tghelpers.Broadcast(c, a.bot, ids, text); err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Announcement queued for %d users.", len(ids)))
}
