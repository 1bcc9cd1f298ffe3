package app

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/expensebot/core/telegram"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/internal/convo"
)

// User-facing messages shared across handlers.
const (
	msgInvalidRetry   = "Invalid input. Please try again."
	msgInvalidRestart = "Invalid input. Please re-enter your request."
	msgInsufficient   = "Insufficient information has been provided.\nDescription, Date, and Amount is required."
	msgCancelled      = "Transaction cancelled."
	msgRecordedFmt    = "Transaction recorded with ID: %d."
	msgNoRecent       = "No transactions recorded."

	msgHelp = "Record your expenses one field at a time with /add, " +
		"or in a single message with /simple (see /simple_help for the format).\n" +
		"During a transaction, /date fills in the current time, " +
		"/complete concludes early and /cancel discards everything."

	msgSimpleHelp = "Add a transaction in one message:\n" +
		"/simple\n" +
		"Description\n" +
		"Amount\n" +
		"Shop\n" +
		"Location\n" +
		"Purpose\n" +
		"Trailing lines may be left out. The date is taken from the message time."
)

// recentLimit caps the number of rows shown by /recent.
const recentLimit = 10

func (a *App) registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/add", coretelegram.Command{
		Handler:     a.cmdAdd,
		Description: "Manually add a new transaction",
	})
	reg.RegisterCommand("/simple", coretelegram.Command{
		Handler:     a.cmdSimple,
		Description: "Add a transaction in a single message",
	})
	reg.RegisterCommand("/simple_help", coretelegram.Command{
		Handler:     a.cmdSimpleHelp,
		Description: "Show the single-message entry format",
	})
	reg.RegisterCommand("/help", coretelegram.Command{
		Handler:     a.cmdHelp,
		Description: "Show available commands",
	})
	reg.RegisterCommand("/date", coretelegram.Command{
		Handler:     a.cmdDate,
		Description: "Use the message time as the transaction date",
		Hidden:      true,
	})
	reg.RegisterCommand("/complete", coretelegram.Command{
		Handler:     a.cmdComplete,
		Description: "Conclude the current transaction",
		Hidden:      true,
	})
	reg.RegisterCommand("/cancel", coretelegram.Command{
		Handler:     a.cmdCancel,
		Description: "Cancel the current transaction",
		Hidden:      true,
	})
	reg.RegisterCommand("/recent", coretelegram.Command{
		Handler:     a.cmdRecent,
		Description: "Show recent transactions",
		AdminOnly:   true,
	})
	return reg
}

func (a *App) cmdAdd(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "add")
	chatID := c.Chat().ID
	if s, ok := a.sessions.Lookup(chatID); ok {
		return a.render(c, ctx, s, a.engine.Reprompt(s))
	}
	s := a.sessions.Start(chatID, int64(c.Update().ID), convo.FlowManual)
	return a.render(c, ctx, s, a.engine.StartManual(s))
}

func (a *App) cmdSimple(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "simple")
	chatID := c.Chat().ID
	if s, ok := a.sessions.Lookup(chatID); ok {
		return a.render(c, ctx, s, a.engine.Reprompt(s))
	}
	s := a.sessions.Start(chatID, int64(c.Update().ID), convo.FlowSimple)
	step, err := a.engine.StartSimple(ctx, s, c.Text(), c.Message().Time())
	if err != nil {
		return err
	}
	return a.render(c, ctx, s, step)
}

func (a *App) cmdDate(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "date")
	s, ok := a.sessions.Lookup(c.Chat().ID)
	if !ok {
		return nil
	}
	if s.Flow != convo.FlowManual || (s.Await != convo.KindImage && s.Await != convo.KindDate) {
		return a.render(c, ctx, s, a.engine.Reprompt(s))
	}
	step, err := a.engine.AutoDate(ctx, s, c.Message().Time())
	if err != nil {
		return err
	}
	return a.render(c, ctx, s, step)
}

func (a *App) cmdComplete(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "complete")
	s, ok := a.sessions.Lookup(c.Chat().ID)
	if !ok {
		return nil
	}
	step, err := a.engine.Complete(ctx, s)
	if err != nil {
		return err
	}
	return a.render(c, ctx, s, step)
}

func (a *App) cmdCancel(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cancel")
	s, ok := a.sessions.Lookup(c.Chat().ID)
	if !ok {
		return nil
	}
	return a.render(c, ctx, s, a.engine.Cancel(s))
}

func (a *App) cmdHelp(c tele.Context) error {
	return tghelpers.SendText(c, msgHelp)
}

func (a *App) cmdSimpleHelp(c tele.Context) error {
	return tghelpers.SendText(c, msgSimpleHelp)
}

func (a *App) cmdRecent(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "recent")
	chatID := c.Chat().ID
	rows, err := a.store.Recent(ctx, chatID, recentLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return tghelpers.SendText(c, msgNoRecent)
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s  $%d.%02d", r.Datetime, r.Description, r.Amount/100, r.Amount%100)
		if r.Shop != "" {
			fmt.Fprintf(&b, " (%s)", r.Shop)
		}
		b.WriteByte('\n')
	}
	return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
}
