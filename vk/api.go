package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/api/params"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"racebot/telemetry"
)

var tracer = otel.Tracer("racebot/vk")

const (
	lastRace = "last"

	kbRows = 2
	kbCols = 4
)

const (
	helloMessage = `Привет! Я бот, который делится информацией про F1 :)
Для того чтобы подробнее познакомиться с моими возможностями напиши мне "Что умеешь?".

Приятного пользования :)`

	helpMessage = `Команды которые я понимаю (могу их прочесть в твоём сообщении среди других слов):
• календарь сезона - список гран-при F1 текущего сезона
• кубок конструкторов или кк - текущее положение команд в кубке конструкторов
• личный зачёт - текущее положение гонщиков в личном зачёте
• следующая гонка - информация о следующем гран-при F1
• результат гонки - результат последней прошедшей гонки F1
• результат квалы - результат последней квалификации
• результат спринта - результат последнего спринта
• уикенд - квалификация, спринт и гонка последнего этапа
• дней без формулы или дбф - количество дней с последней гонки F1
• этапы - список этапов сезона
• ласт гп - информация о последнем гран-при

!Внимание! Информация, связанная с проведённой гонкой может обновляться не сразу.`
)

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

type eventService interface {
	GetGPInfoCarousel(ctx context.Context, userDate time.Time, raceID string) (string, error)
	GetRoundCount(ctx context.Context, year int) (int, error)
}

// sender is the part of *api.VK the bot writes with.
type sender interface {
	MessagesSend(params api.Params) (int, error)
	MessagesSendMessageEventAnswer(params api.Params) (int, error)
}

// reply is one outgoing message. Keyboard and Template hold JSON.
type reply struct {
	Text     string
	Keyboard string
	Template string
}

type VkAPI struct {
	lp             *longpoll.LongPoll
	vk             sender
	messageService messageService
	eventService   eventService
	log            *slog.Logger
	now            func() time.Time
}

func NewVKAPI(token string, messageService messageService, eventService eventService, log *slog.Logger) (*VkAPI, error) {
	vk := api.NewVK(token)

	group, err := vk.GroupsGetByID(api.Params{})
	if err != nil {
		return nil, fmt.Errorf("error groups get by id: %w", err)
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("error groups get by id: token has no group")
	}

	lp, err := longpoll.NewLongPoll(vk, group[0].ID)
	if err != nil {
		return nil, fmt.Errorf("error creating new long poll: %w", err)
	}

	bot := newVKAPI(vk, messageService, eventService, log)
	bot.lp = lp
	return bot, nil
}

func newVKAPI(vk sender, messageService messageService, eventService eventService, log *slog.Logger) *VkAPI {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &VkAPI{vk: vk, messageService: messageService, eventService: eventService, log: log, now: time.Now}
}

// Run serves the long poll until ctx is cancelled.
func (vk *VkAPI) Run(ctx context.Context) error {
	vk.lp.MessageNew(func(_ context.Context, obj events.MessageNewObject) {
		vk.handleMessage(ctx, obj)
	})
	vk.lp.MessageEvent(func(_ context.Context, obj events.MessageEventObject) {
		vk.handleEvent(ctx, obj)
	})

	go func() {
		<-ctx.Done()
		vk.lp.Shutdown()
	}()

	vk.log.InfoContext(ctx, "Start longpoll")
	if err := vk.lp.Run(); err != nil {
		return fmt.Errorf("vk longpoll: %w", err)
	}
	return nil
}

func (vk *VkAPI) handleMessage(ctx context.Context, obj events.MessageNewObject) {
	ctx, span := telemetry.StartSpan(ctx, tracer, "vk.message",
		trace.WithAttributes(attribute.Int("vk.peer_id", obj.Message.PeerID)))
	defer span.End()

	log := vk.log.With(slog.Int("peer_id", obj.Message.PeerID))
	log.InfoContext(ctx, "MESSAGE info", slog.String("text", obj.Message.Text))

	userDate := time.Unix(int64(obj.Message.Date), 0)
	answer, err := vk.answerMessage(ctx, obj.Message.Text, obj.Message.Payload, userDate)
	if err != nil {
		telemetry.RecordError(span, err)
		log.ErrorContext(ctx, "Error building answer", slog.String("text", obj.Message.Text), slog.Any("error", err))
	}
	if answer.Text == "" {
		log.InfoContext(ctx, "Команда в сообщении не распознана", slog.String("text", obj.Message.Text))
		return
	}

	if err := sendMessageToUser(vk.vk, obj.Message.PeerID, answer); err != nil {
		log.ErrorContext(ctx, "Error with sending message-answer to user", slog.Any("error", err))
	}
}

// answerMessage maps a text message, or the payload of a text button, to
// its reply. Unknown commands give an empty reply.
func (vk *VkAPI) answerMessage(ctx context.Context, text, payload string, userDate time.Time) (reply, error) {
	textPayload, err := extractCommand(payload)
	if err != nil {
		return reply{}, err
	}

	if textPayload != "" {
		command, round := getCommand(textPayload)
		raceID := strconv.Itoa(round)
		switch command {
		case commandRaceRes:
			return textReply(vk.messageService.GetRaceResultsMessage(ctx, userDate, raceID))
		case commandQualRes:
			return textReply(vk.messageService.GetQualifyingResultsMessage(ctx, userDate, raceID))
		case commandSprRes:
			return textReply(vk.messageService.GetSprintResultsMessage(ctx, userDate, raceID))
		}
		return reply{}, nil
	}

	command, _ := getCommand(strings.ToLower(text))
	switch command {
	case commandHello:
		return reply{Text: helloMessage}, nil
	case commandHelp:
		return reply{Text: helpMessage}, nil
	case commandDrSt:
		return textReply(vk.messageService.GetDriverStandingsMessage(ctx, userDate))
	case commandCld:
		return textReply(vk.messageService.GetCalendarMessage(ctx, userDate.Year()))
	case commandNxRc:
		return textReply(vk.messageService.GetNextRaceMessage(ctx, userDate))
	case commandConsStFull, commandConsSt:
		return textReply(vk.messageService.GetConstructorStandingsMessage(ctx, userDate))
	case commandLstRc:
		return textReply(vk.messageService.GetRaceResultsMessage(ctx, userDate, lastRace))
	case commandLstQual:
		return textReply(vk.messageService.GetQualifyingResultsMessage(ctx, userDate, lastRace))
	case commandLstSpr:
		return textReply(vk.messageService.GetSprintResultsMessage(ctx, userDate, lastRace))
	case commandWeekend:
		return textReply(vk.messageService.GetWeekendMessage(ctx, userDate, lastRace))
	case commandDaysAfterRace, commandDaysCut:
		return textReply(vk.messageService.GetCountDaysAfterRaceMessage(ctx, userDate))
	case commandLstGP:
		return vk.carouselReply(ctx, userDate, lastRace)
	case commandGPs:
		kb, err := vk.roundsKeyboard(ctx, userDate.Year(), 1)
		if err != nil {
			return reply{Text: "Список этапов сейчас недоступен."}, err
		}
		return reply{Text: "Этапы F1:", Keyboard: kb}, nil
	}
	return reply{}, nil
}

func (vk *VkAPI) handleEvent(ctx context.Context, obj events.MessageEventObject) {
	ctx, span := telemetry.StartSpan(ctx, tracer, "vk.event",
		trace.WithAttributes(attribute.Int("vk.peer_id", obj.PeerID)))
	defer span.End()

	log := vk.log.With(slog.Int("peer_id", obj.PeerID))
	log.InfoContext(ctx, "EVENT info", slog.String("payload", string(obj.Payload)))

	answer, err := vk.answerEvent(ctx, string(obj.Payload))
	if err != nil {
		telemetry.RecordError(span, err)
		log.ErrorContext(ctx, "Error building event answer", slog.Any("error", err))
	}
	if answer.Text != "" {
		if err := sendMessageToUser(vk.vk, obj.PeerID, answer); err != nil {
			log.ErrorContext(ctx, "Error with sending message-answer to event", slog.Any("error", err))
		}
	}

	if err := sendEventMessageToUser(vk.vk, obj.PeerID, obj.EventID, obj.UserID); err != nil {
		log.ErrorContext(ctx, "Error with sending event-answer to user", slog.Any("error", err))
	}
}

// answerEvent maps a callback button payload to its reply: a page of the
// rounds keyboard or the card of one grand prix.
func (vk *VkAPI) answerEvent(ctx context.Context, payload string) (reply, error) {
	payloadCommand, err := extractCommand(payload)
	if err != nil {
		return reply{}, err
	}

	now := vk.now()
	command, num := getEventCommand(payloadCommand)
	switch command {
	case commandGpList:
		kb, err := vk.roundsKeyboard(ctx, now.Year(), num)
		if err != nil {
			return reply{}, err
		}
		return reply{Text: "Обновление", Keyboard: kb}, nil
	case commandGpInfo:
		return vk.carouselReply(ctx, now, strconv.Itoa(num))
	}
	return reply{}, nil
}

func (vk *VkAPI) carouselReply(ctx context.Context, userDate time.Time, raceID string) (reply, error) {
	crsl, err := vk.eventService.GetGPInfoCarousel(ctx, userDate, raceID)
	if err != nil {
		return reply{Text: crsl}, err
	}
	return reply{Text: "Информация о гран-при:", Template: crsl}, nil
}

func (vk *VkAPI) roundsKeyboard(ctx context.Context, year, page int) (string, error) {
	rounds, err := vk.eventService.GetRoundCount(ctx, year)
	if err != nil {
		return "", err
	}

	kb, err := makeKeyboard(kbRows, kbCols, page, rounds, false)
	if err != nil {
		return "", fmt.Errorf("error creating keyboard: %w", err)
	}

	jsKb, err := json.Marshal(kb)
	if err != nil {
		return "", fmt.Errorf("error marshal keyboard: %w", err)
	}
	return string(jsKb), nil
}

// textReply sends whatever text the service produced, including its
// explanation of a failure.
func textReply(text string, err error) (reply, error) {
	return reply{Text: text}, err
}

func sendMessageToUser(vk sender, peerID int, answer reply) error {
	b := params.NewMessagesSendBuilder()
	b.Message(answer.Text)
	b.RandomID(0)
	b.PeerID(peerID)

	if answer.Keyboard != "" {
		b.Keyboard(answer.Keyboard)
	}
	if answer.Template != "" {
		b.Template(answer.Template)
	}

	if _, err := vk.MessagesSend(b.Params); err != nil {
		return fmt.Errorf("error sending message to user: %w", err)
	}
	return nil
}

func sendEventMessageToUser(vk sender, peerID int, eventID string, userID int) error {
	prms := params.NewMessagesSendMessageEventAnswerBuilder()
	prms.PeerID(peerID)
	prms.EventID(eventID)
	prms.UserID(userID)

	if _, err := vk.MessagesSendMessageEventAnswer(prms.Params); err != nil {
		return fmt.Errorf("error sending event answer to user: %w", err)
	}
	return nil
}

// extractCommand returns the command of a button payload, or "" when the
// message has no payload.
func extractCommand(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}

	var pl Payload
	if err := json.Unmarshal([]byte(payload), &pl); err != nil {
		return "", fmt.Errorf("error unmarshal command in payload message: %w", err)
	}
	return pl.Command, nil
}
