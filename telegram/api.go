package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"racebot/telemetry"
)

var tracer = otel.Tracer("racebot/telegram")

// lastRace mirrors service.LastRace.
const lastRace = "last"

type messageService interface {
	GetDriverStandingsMessage(ctx context.Context, userDate time.Time) (string, error)
	GetConstructorStandingsMessage(ctx context.Context, userDate time.Time) (string, error)
	GetCalendarMessage(ctx context.Context, year int) (string, error)
	GetNextRaceMessage(ctx context.Context, userDate time.Time) (string, error)
	GetRaceResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error)
	GetQualifyingResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error)
	GetSprintResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error)
	GetWeekendMessage(ctx context.Context, userDate time.Time, raceID string) (string, error)
	GetCountDaysAfterRaceMessage(ctx context.Context, userDate time.Time) (string, error)
}

// commandFunc builds the answer to a command. arg is the first word after
// the command, or "last" when there is none.
type commandFunc func(ctx context.Context, userDate time.Time, arg string) (string, error)

type TgAPI struct {
	bot            *telego.Bot
	messageService messageService
	commands       map[string]commandFunc
	log            *slog.Logger
}

func NewTGAPI(token string, messageService messageService, log *slog.Logger) (*TgAPI, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("error create tg bot from token: %w", err)
	}
	return newTGAPI(bot, messageService, log), nil
}

func newTGAPI(bot *telego.Bot, messageService messageService, log *slog.Logger) *TgAPI {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	tg := &TgAPI{bot: bot, messageService: messageService, log: log}
	s := messageService
	tg.commands = map[string]commandFunc{
		"driverstandings": func(ctx context.Context, d time.Time, _ string) (string, error) {
			return s.GetDriverStandingsMessage(ctx, d)
		},
		"constructorstandings": func(ctx context.Context, d time.Time, _ string) (string, error) {
			return s.GetConstructorStandingsMessage(ctx, d)
		},
		"calendar": func(ctx context.Context, d time.Time, _ string) (string, error) {
			return s.GetCalendarMessage(ctx, d.Year())
		},
		"nextrace": func(ctx context.Context, d time.Time, _ string) (string, error) {
			return s.GetNextRaceMessage(ctx, d)
		},
		"daysafterrace": func(ctx context.Context, d time.Time, _ string) (string, error) {
			return s.GetCountDaysAfterRaceMessage(ctx, d)
		},
		"lastrace":   s.GetRaceResultsMessage,
		"qualifying": s.GetQualifyingResultsMessage,
		"sprint":     s.GetSprintResultsMessage,
		"weekend":    s.GetWeekendMessage,
	}
	return tg
}

// Run handles updates until ctx is cancelled.
func (tg *TgAPI) Run(ctx context.Context) error {
	updates, err := tg.bot.UpdatesViaLongPolling(nil)
	if err != nil {
		return fmt.Errorf("error taking updates from longpoll: %w", err)
	}
	defer tg.bot.StopLongPolling()

	handler, err := th.NewBotHandler(tg.bot, updates)
	if err != nil {
		return fmt.Errorf("error creating bot handler: %w", err)
	}

	for name := range tg.commands {
		handler.Handle(func(bot *telego.Bot, update telego.Update) {
			tg.handleCommand(ctx, bot, update.Message)
		}, th.CommandEqual(name))
	}

	go func() {
		<-ctx.Done()
		handler.Stop()
	}()

	tg.log.InfoContext(ctx, "Start telegram longpoll")
	handler.Start()
	return nil
}

func (tg *TgAPI) handleCommand(ctx context.Context, bot *telego.Bot, message *telego.Message) {
	ctx, span := telemetry.StartSpan(ctx, tracer, "telegram.command",
		trace.WithAttributes(attribute.Int64("telegram.chat_id", message.Chat.ID)))
	defer span.End()

	log := tg.log.With(slog.Int64("peer_id", message.Chat.ID))
	log.InfoContext(ctx, "MESSAGE info", slog.String("text", message.Text))

	messageToUser, err := tg.answer(ctx, message.Text, message.Date)
	if err != nil {
		telemetry.RecordError(span, err)
		log.ErrorContext(ctx, "Error building answer", slog.String("text", message.Text), slog.Any("error", err))
	}
	if messageToUser == "" {
		return
	}

	if _, err := bot.SendMessage(tu.Message(tu.ID(message.Chat.ID), messageToUser)); err != nil {
		log.ErrorContext(ctx, "Error sending message", slog.Any("error", err))
	}
}

// answer returns the reply to a command message sent at unix time date.
func (tg *TgAPI) answer(ctx context.Context, text string, date int64) (string, error) {
	name, arg := parseCommand(text)
	fn, ok := tg.commands[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q", name)
	}
	return fn(ctx, getDateFromMessage(date), arg)
}

// parseCommand splits "/weekend@racebot 5" into "weekend" and "5".
func parseCommand(text string) (name, arg string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", lastRace
	}
	name, _, _ = strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	arg = lastRace
	if len(fields) > 1 {
		arg = fields[1]
	}
	return strings.ToLower(name), arg
}

func getDateFromMessage(userTimestamp int64) time.Time {
	return time.Unix(userTimestamp, 0)
}
