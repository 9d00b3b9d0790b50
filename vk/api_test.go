package vk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	raceID string
	rounds int
	err    error
}

func (f *fakeService) GetDriverStandingsMessage(context.Context, time.Time) (string, error) {
	return "driver standings", nil
}

func (f *fakeService) GetConstructorStandingsMessage(context.Context, time.Time) (string, error) {
	return "constructor standings", nil
}

func (f *fakeService) GetCalendarMessage(context.Context, int) (string, error) {
	return "calendar", nil
}

func (f *fakeService) GetNextRaceMessage(context.Context, time.Time) (string, error) {
	return "next race", nil
}

func (f *fakeService) GetRaceResultsMessage(_ context.Context, _ time.Time, raceID string) (string, error) {
	f.raceID = raceID
	return "race results", f.err
}

func (f *fakeService) GetQualifyingResultsMessage(_ context.Context, _ time.Time, raceID string) (string, error) {
	f.raceID = raceID
	return "qualifying", nil
}

func (f *fakeService) GetSprintResultsMessage(_ context.Context, _ time.Time, raceID string) (string, error) {
	f.raceID = raceID
	return "sprint", nil
}

func (f *fakeService) GetWeekendMessage(_ context.Context, _ time.Time, raceID string) (string, error) {
	f.raceID = raceID
	return "weekend", nil
}

func (f *fakeService) GetCountDaysAfterRaceMessage(context.Context, time.Time) (string, error) {
	return "days", nil
}

func (f *fakeService) GetGPInfoCarousel(_ context.Context, _ time.Time, raceID string) (string, error) {
	f.raceID = raceID
	return `{"type":"carousel"}`, nil
}

func (f *fakeService) GetRoundCount(context.Context, int) (int, error) {
	return f.rounds, f.err
}

type fakeSender struct {
	sent    []api.Params
	answers []api.Params
}

func (f *fakeSender) MessagesSend(p api.Params) (int, error) {
	f.sent = append(f.sent, p)
	return len(f.sent), nil
}

func (f *fakeSender) MessagesSendMessageEventAnswer(p api.Params) (int, error) {
	f.answers = append(f.answers, p)
	return 1, nil
}

func TestAnswerMessage_TextCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text           string
		expected       string
		expectedRaceID string
	}{
		{text: "Личный зачёт", expected: "driver standings"},
		{text: "покажи календарь сезона", expected: "calendar"},
		{text: "Когда следующая гонка?", expected: "next race"},
		{text: "кубок конструкторов", expected: "constructor standings"},
		{text: "кк", expected: "constructor standings"},
		{text: "Результат гонки", expected: "race results", expectedRaceID: lastRace},
		{text: "результаты квалы", expected: "qualifying", expectedRaceID: lastRace},
		{text: "результат спринта", expected: "sprint", expectedRaceID: lastRace},
		{text: "уикенд", expected: "weekend", expectedRaceID: lastRace},
		{text: "дней без F1", expected: "days"},
		{text: "дбф", expected: "days"},
		{text: "Что умеешь?", expected: helpMessage},
		{text: "Начать", expected: helloMessage},
		{text: "привет", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			svc := &fakeService{}
			bot := newVKAPI(&fakeSender{}, svc, svc, nil)

			got, err := bot.answerMessage(context.Background(), tt.text, "", time.Now())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Text)
			assert.Equal(t, tt.expectedRaceID, svc.raceID)
		})
	}
}

func TestAnswerMessage_PayloadCommands(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	bot := newVKAPI(&fakeSender{}, svc, svc, nil)

	got, err := bot.answerMessage(context.Background(), "Результат квалификации", CommandPayload("qualRes_7"), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "qualifying", got.Text)
	assert.Equal(t, "7", svc.raceID)

	_, err = bot.answerMessage(context.Background(), "", "{broken", time.Now())
	assert.Error(t, err)
}

func TestAnswerMessage_KeepsServiceTextOnError(t *testing.T) {
	t.Parallel()

	svc := &fakeService{err: errors.New("retries exhausted")}
	bot := newVKAPI(&fakeSender{}, svc, svc, nil)

	got, err := bot.answerMessage(context.Background(), "результат гонки", "", time.Now())

	assert.Error(t, err)
	assert.Equal(t, "race results", got.Text)
}

func TestAnswerMessage_RoundsKeyboard(t *testing.T) {
	t.Parallel()

	svc := &fakeService{rounds: 24}
	bot := newVKAPI(&fakeSender{}, svc, svc, nil)

	got, err := bot.answerMessage(context.Background(), "этапы", "", time.Now())

	require.NoError(t, err)
	var kb Kb
	require.NoError(t, json.Unmarshal([]byte(got.Keyboard), &kb))
	require.Len(t, kb.Buttons, 3)
	assert.Equal(t, "1", kb.Buttons[0][0].Action.Label)
	assert.Equal(t, "Далее", kb.Buttons[2][0].Action.Label)
}

func TestAnswerEvent(t *testing.T) {
	t.Parallel()

	svc := &fakeService{rounds: 24}
	bot := newVKAPI(&fakeSender{}, svc, svc, nil)
	bot.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	got, err := bot.answerEvent(context.Background(), CommandPayload("gpListPage_3"))
	require.NoError(t, err)
	var kb Kb
	require.NoError(t, json.Unmarshal([]byte(got.Keyboard), &kb))
	assert.Equal(t, "17", kb.Buttons[0][0].Action.Label)

	got, err = bot.answerEvent(context.Background(), CommandPayload("gpPage_12"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"carousel"}`, got.Template)
	assert.Equal(t, "12", svc.raceID)

	got, err = bot.answerEvent(context.Background(), CommandPayload("somethingElse"))
	require.NoError(t, err)
	assert.Empty(t, got.Text)
}

func TestSendMessageToUser(t *testing.T) {
	t.Parallel()

	s := &fakeSender{}

	require.NoError(t, sendMessageToUser(s, 42, reply{Text: "hi", Keyboard: `{"buttons":[]}`}))
	require.NoError(t, sendEventMessageToUser(s, 42, "event", 7))

	require.Len(t, s.sent, 1)
	assert.Equal(t, "hi", s.sent[0]["message"])
	assert.Equal(t, 42, s.sent[0]["peer_id"])
	assert.Equal(t, `{"buttons":[]}`, s.sent[0]["keyboard"])
	assert.NotContains(t, s.sent[0], "template")
	require.Len(t, s.answers, 1)
	assert.Equal(t, "event", s.answers[0]["event_id"])
}
