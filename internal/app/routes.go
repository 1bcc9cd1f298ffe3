package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/expensebot/core/logger"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/core/telegram/keyboard"
	"github.com/m3rciful/expensebot/internal/convo"
	"log/slog"
)

// dateRe prefilters text that could be a YYMMDDHHMM date while the flow is
// still offering the receipt upload. Anything else re-shows the intro prompt
// instead of the date slot's retry message.
var dateRe = regexp.MustCompile(`^(\d{2}){1,5}$`)

// onText routes free text into the chat's active conversation. Text outside
// any conversation is ignored.
func (a *App) onText(c tele.Context) error {
	s, ok := a.sessions.Lookup(c.Chat().ID)
	if !ok {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	text := strings.TrimSpace(c.Text())

	if s.Await == convo.KindImage {
		if s.Flow == convo.FlowSimple && text == "Skip" {
			step, err := a.engine.SkipImage(ctx, s)
			if err != nil {
				return err
			}
			return a.render(c, ctx, s, step)
		}
		if s.Flow == convo.FlowManual && dateRe.MatchString(text) {
			step, err := a.engine.Progress(ctx, s, text, true)
			if err != nil {
				return err
			}
			return a.render(c, ctx, s, step)
		}
		return a.render(c, ctx, s, a.engine.Reprompt(s))
	}

	step, err := a.engine.Progress(ctx, s, text, true)
	if err != nil {
		return err
	}
	return a.render(c, ctx, s, step)
}

// onPhoto stores the receipt image for the chat's active conversation.
// Photos outside a conversation, or while text input is expected, are ignored.
func (a *App) onPhoto(c tele.Context) error {
	s, ok := a.sessions.Lookup(c.Chat().ID)
	if !ok || s.Await != convo.KindImage {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	rc, err := a.bot.File(&photo.File)
	if err != nil {
		return fmt.Errorf("download receipt %d: %w", s.CorrelationID, err)
	}
	defer rc.Close()

	path, err := a.receipts.Save(s.CorrelationID, rc)
	if err != nil {
		logger.Error(ctx, "app", "receipt.save",
			slog.Int64("correlation_id", s.CorrelationID),
			slog.String("err", err.Error()),
		)
		return a.render(c, ctx, s, a.engine.Reprompt(s))
	}
	logger.Debug(ctx, "app", "receipt.saved",
		slog.Int64("correlation_id", s.CorrelationID),
		slog.String("path", path),
	)

	step, err := a.engine.ReceiveImage(ctx, s)
	if err != nil {
		return err
	}
	return a.render(c, ctx, s, step)
}

// render translates an engine step into outgoing messages, clearing the
// session on every terminal outcome.
func (a *App) render(c tele.Context, ctx context.Context, s *convo.Session, step convo.Step) error {
	switch step.Outcome {
	case convo.OutcomePrompt:
		return tghelpers.SendText(c, step.Prompt, replyMarkup(step.Keyboard))
	case convo.OutcomeRetry:
		if err := tghelpers.SendText(c, msgInvalidRetry); err != nil {
			return err
		}
		if step.Prompt == "" {
			return nil
		}
		return tghelpers.SendText(c, step.Prompt, replyMarkup(step.Keyboard))
	case convo.OutcomeCompleted:
		a.sessions.Release(s)
		return tghelpers.SendText(c, fmt.Sprintf(msgRecordedFmt, s.CorrelationID), keyboard.RemoveKeyboard())
	case convo.OutcomeInsufficient:
		a.sessions.Release(s)
		if err := tghelpers.SendText(c, msgInsufficient); err != nil {
			return err
		}
		return tghelpers.SendText(c, msgCancelled, keyboard.RemoveKeyboard())
	case convo.OutcomeCancelled:
		a.sessions.Release(s)
		return tghelpers.SendText(c, msgCancelled, keyboard.RemoveKeyboard())
	case convo.OutcomeRestart:
		a.sessions.Release(s)
		return tghelpers.SendText(c, msgInvalidRestart)
	default:
		logger.Warn(ctx, "app", "render.unknown_outcome",
			slog.Int("outcome", int(step.Outcome)),
		)
		return nil
	}
}
