package service

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=serviceF1.go F1Storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"racebot/ergast"
	"racebot/models"
	"racebot/temperrors"
	vk_api "racebot/vk"
)

// LastRace selects the most recent race that has already started.
const LastRace = "last"

const (
	msgNoData      = "Информации пока нет. Возможно она появится в будущем :)"
	msgUnavailable = "Источник данных F1 сейчас недоступен. Попробуйте позже."
	msgFailure     = "Что-то пошло не так :("
	msgSeasonOver  = "Сезон закончился!"
)

var months = map[time.Month]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// moscow is UTC+3 all year round.
var moscow = time.FixedZone("MSK", 3*60*60)

// F1Storage is the part of ergast.ErgastAPI the chat messages are built from.
type F1Storage interface {
	GetDriverStandings(ctx context.Context, q ergast.Query) ([]models.DriverStanding, error)
	GetConstructorStandings(ctx context.Context, q ergast.Query) ([]models.ConstructorStanding, error)
	GetRaces(ctx context.Context, q ergast.Query) ([]models.Race, error)
	GetResults(ctx context.Context, q ergast.Query) ([]models.Race, error)
	GetQualifying(ctx context.Context, q ergast.Query) ([]models.Race, error)
	GetSprint(ctx context.Context, q ergast.Query) ([]models.Race, error)
}

type ServiceF1 struct {
	storage F1Storage
	loc     *time.Location
	logger  *slog.Logger
}

type Option func(*ServiceF1)

// WithLocation sets the zone session times are shown in. Moscow time by default.
func WithLocation(loc *time.Location) Option {
	return func(s *ServiceF1) {
		s.loc = loc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ServiceF1) {
		s.logger = logger
	}
}

func NewServiceF1(storage F1Storage, opts ...Option) *ServiceF1 {
	s := &ServiceF1{storage: storage, loc: moscow, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every message method returns the text to send together with the error that
// produced it. On failure the text explains the failure to the user: empty
// tables and an unreachable data source get different messages.

func (s *ServiceF1) GetDriverStandingsMessage(ctx context.Context, userDate time.Time) (string, error) {
	drivers, err := s.storage.GetDriverStandings(ctx, ergast.Query{Season: ergast.Int(userDate.Year())})
	if err != nil {
		return failure(fmt.Errorf("driver standings: %w", err))
	}
	if len(drivers) == 0 {
		return failure(fmt.Errorf("driver standings %d: %w", userDate.Year(), temperrors.ErrEmptyList))
	}
	return fmt.Sprintf("Личный зачёт F1, сезон %d:\n%s", userDate.Year(), driversToString(drivers)), nil
}

func (s *ServiceF1) GetConstructorStandingsMessage(ctx context.Context, userDate time.Time) (string, error) {
	constructors, err := s.storage.GetConstructorStandings(ctx, ergast.Query{Season: ergast.Int(userDate.Year())})
	if err != nil {
		return failure(fmt.Errorf("constructor standings: %w", err))
	}
	if len(constructors) == 0 {
		return failure(fmt.Errorf("constructor standings %d: %w", userDate.Year(), temperrors.ErrEmptyList))
	}
	return fmt.Sprintf("Кубок конструкторов F1, сезон %d:\n%s", userDate.Year(), constructorsToString(constructors)), nil
}

func (s *ServiceF1) GetCalendarMessage(ctx context.Context, year int) (string, error) {
	calendar, err := s.calendar(ctx, year)
	if err != nil {
		return failure(err)
	}
	return fmt.Sprintf("Календарь F1, сезон %d:\n%s", year, s.racesToString(calendar)), nil
}

func (s *ServiceF1) GetNextRaceMessage(ctx context.Context, userDate time.Time) (string, error) {
	calendar, err := s.calendar(ctx, userDate.Year())
	if err != nil {
		return failure(err)
	}

	next, ok := findNextRace(userDate, calendar)
	if !ok {
		return msgSeasonOver, nil
	}
	return fmt.Sprintf("Следующий гран-при:\n%s", raceFullInfoToString(s.formatDateTime(next))), nil
}

func (s *ServiceF1) GetCountDaysAfterRaceMessage(ctx context.Context, userDate time.Time) (string, error) {
	last, err := s.lastRace(ctx, userDate)
	if err != nil {
		return failure(err)
	}

	difference := userDate.Sub(raceStart(last))
	return fmt.Sprintf("Дней без F1 - %d :(\n", int64(difference.Hours()/24)), nil
}

// GetRaceResultsMessage renders the results of round raceID of the user's
// season, or of the last started race when raceID is LastRace.
func (s *ServiceF1) GetRaceResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error) {
	race, err := s.roundRecord(ctx, userDate, raceID, s.storage.GetResults, "race results")
	if err != nil {
		return failure(err)
	}
	if raceID == LastRace {
		return fmt.Sprintf("Последняя гонка F1 %s:\n%s", race.RaceName, resultsToString(race.Results)), nil
	}
	return fmt.Sprintf("Результаты гонки %s:\n%s", race.RaceName, resultsToString(race.Results)), nil
}

func (s *ServiceF1) GetQualifyingResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error) {
	race, err := s.roundRecord(ctx, userDate, raceID, s.storage.GetQualifying, "qualifying results")
	if err != nil {
		return failure(err)
	}
	if raceID == LastRace {
		return fmt.Sprintf("Последняя квалификация %s:\n%s", race.RaceName, qualifyingResultsToString(race.QualifyingResults)), nil
	}
	return fmt.Sprintf("Результаты квалификации %s:\n%s", race.RaceName, qualifyingResultsToString(race.QualifyingResults)), nil
}

func (s *ServiceF1) GetSprintResultsMessage(ctx context.Context, userDate time.Time, raceID string) (string, error) {
	race, err := s.roundRecord(ctx, userDate, raceID, s.storage.GetSprint, "sprint results")
	if err != nil {
		return failure(err)
	}
	return fmt.Sprintf("Результаты спринт-гонки %s:\n%s", race.RaceName, resultsToString(race.SprintResults)), nil
}

// GetWeekendMessage combines qualifying, sprint and race results of one round.
// The three tables are fetched concurrently.
func (s *ServiceF1) GetWeekendMessage(ctx context.Context, userDate time.Time, raceID string) (string, error) {
	season, round, err := s.resolveRound(ctx, userDate, raceID)
	if err != nil {
		return failure(err)
	}
	q := ergast.Query{Season: ergast.Int(season), Round: ergast.Int(round)}

	var results, qualifying, sprint []models.Race
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		results, err = s.storage.GetResults(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		qualifying, err = s.storage.GetQualifying(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		sprint, err = s.storage.GetSprint(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return failure(fmt.Errorf("weekend %d/%d: %w", season, round, err))
	}

	var name string
	sections := make([]string, 0, 3)
	if len(qualifying) > 0 {
		name = qualifying[0].RaceName
		sections = append(sections, "Квалификация:\n"+qualifyingResultsToString(qualifying[0].QualifyingResults))
	}
	if len(sprint) > 0 {
		name = sprint[0].RaceName
		sections = append(sections, "Спринт:\n"+resultsToString(sprint[0].SprintResults))
	}
	if len(results) > 0 {
		name = results[0].RaceName
		sections = append(sections, "Гонка:\n"+resultsToString(results[0].Results))
	}
	if len(sections) == 0 {
		return failure(fmt.Errorf("weekend %d/%d: %w", season, round, temperrors.ErrEmptyList))
	}

	return fmt.Sprintf("Уикенд %s:\n\n%s", name, strings.Join(sections, "\n")), nil
}

// GetGPInfoCarousel returns a VK carousel template describing one grand prix.
func (s *ServiceF1) GetGPInfoCarousel(ctx context.Context, userDate time.Time, raceID string) (string, error) {
	race, err := s.roundRecord(ctx, userDate, raceID, s.storage.GetRaces, "grand prix")
	if err != nil {
		return failure(err)
	}

	crsl := vk_api.Carousel{Type: "carousel", Elements: []vk_api.CarouselItem{makeCarouselGPItem(s.formatDateTime(race))}}
	jsCrsl, err := json.Marshal(crsl)
	if err != nil {
		return failure(fmt.Errorf("error marshal carousel: %w", err))
	}
	return string(jsCrsl), nil
}

// GetRoundCount returns the number of rounds in a season.
func (s *ServiceF1) GetRoundCount(ctx context.Context, year int) (int, error) {
	calendar, err := s.calendar(ctx, year)
	if err != nil {
		return 0, err
	}
	return len(calendar), nil
}

// ErrorMessage returns the text shown to a user for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, temperrors.ErrEmptyList):
		return msgNoData
	case errors.Is(err, temperrors.ErrExhausted):
		return msgUnavailable
	}
	return msgFailure
}

func failure(err error) (string, error) {
	return ErrorMessage(err), err
}

func (s *ServiceF1) calendar(ctx context.Context, year int) ([]models.Race, error) {
	calendar, err := s.storage.GetRaces(ctx, ergast.Query{Season: ergast.Int(year)})
	if err != nil {
		return nil, fmt.Errorf("calendar %d: %w", year, err)
	}
	if len(calendar) == 0 {
		return nil, fmt.Errorf("calendar %d: %w", year, temperrors.ErrEmptyList)
	}
	return calendar, nil
}

// lastRace finds the latest race started before userDate, falling back to
// the previous season before the first race of the year.
func (s *ServiceF1) lastRace(ctx context.Context, userDate time.Time) (models.Race, error) {
	for _, year := range []int{userDate.Year(), userDate.Year() - 1} {
		calendar, err := s.calendar(ctx, year)
		if errors.Is(err, temperrors.ErrEmptyList) {
			continue
		}
		if err != nil {
			return models.Race{}, err
		}
		if race, ok := findLastRace(userDate, calendar); ok {
			return race, nil
		}
	}
	return models.Race{}, fmt.Errorf("last race before %s: %w", userDate.Format(time.DateOnly), temperrors.ErrEmptyList)
}

func (s *ServiceF1) resolveRound(ctx context.Context, userDate time.Time, raceID string) (season, round int, err error) {
	if raceID == LastRace {
		race, err := s.lastRace(ctx, userDate)
		if err != nil {
			return 0, 0, err
		}
		season, _ = strconv.Atoi(race.Season)
		round, _ = strconv.Atoi(race.Round)
		return season, round, nil
	}

	round, err = strconv.Atoi(raceID)
	if err != nil || round < 1 {
		return 0, 0, &temperrors.InputError{Field: "round", Reason: fmt.Sprintf("must be a round number, got %q", raceID)}
	}
	return userDate.Year(), round, nil
}

// roundRecord fetches the single race-table record of one round.
func (s *ServiceF1) roundRecord(ctx context.Context, userDate time.Time, raceID string,
	fetch func(context.Context, ergast.Query) ([]models.Race, error), what string,
) (models.Race, error) {
	season, round, err := s.resolveRound(ctx, userDate, raceID)
	if err != nil {
		return models.Race{}, err
	}

	races, err := fetch(ctx, ergast.Query{Season: ergast.Int(season), Round: ergast.Int(round)})
	if err != nil {
		return models.Race{}, fmt.Errorf("%s %d/%d: %w", what, season, round, err)
	}
	if len(races) == 0 {
		s.logger.InfoContext(ctx, "No "+what, slog.Int("season", season), slog.Int("round", round))
		return models.Race{}, fmt.Errorf("%s %d/%d: %w", what, season, round, temperrors.ErrEmptyList)
	}
	return races[0], nil
}

// ----------------------------------
//
//	вспомогательные функции
//
// ----------------------------------

func driversToString(drivers []models.DriverStanding) string {
	var b strings.Builder
	for _, driver := range drivers {
		fmt.Fprintf(&b, "%2s | %-3s - %-3s \n", driver.PositionText, driverCode(driver.Driver), driver.Points)
	}
	return b.String()
}

func constructorsToString(constructors []models.ConstructorStanding) string {
	var b strings.Builder
	for _, constructor := range constructors {
		fmt.Fprintf(&b, "%2s | %s - %-3s \n", constructor.PositionText, constructor.Constructor.Name, constructor.Points)
	}
	return b.String()
}

// driverCode falls back to the family name for drivers without a code.
func driverCode(d models.Driver) string {
	if d.Code != "" {
		return d.Code
	}
	return d.FamilyName
}

func (s *ServiceF1) racesToString(races []models.Race) string {
	var b strings.Builder
	for _, race := range races {
		race = s.formatDateTime(race)
		fmt.Fprintf(&b, "Номер этапа: %s,\nНазвание этапа: %s,\nДата этапа: %s,\nВремя этапа: %s.\n\n",
			race.Round, race.RaceName, race.Date, race.Time)
	}
	return b.String()
}

func resultsToString(results []models.Result) string {
	message := new(strings.Builder)

	w := tabwriter.NewWriter(message, 2, 5, 1, ' ', tabwriter.AlignRight)
	for _, position := range results {
		code := driverCode(position.Driver)
		switch {
		case position.Status != "Finished" && position.Time.Time == "":
			fmt.Fprintf(w, "%s |\t%s |\t - %s\n", position.Position, code, position.Status)
		case position.Points != "0" && position.Points != "":
			fmt.Fprintf(w, "%s |\t%s |\t %s - %s\n", position.Position, code, position.Time.Time, position.Points)
		default:
			fmt.Fprintf(w, "%s |\t%s |\t %s\n", position.Position, code, position.Time.Time)
		}
	}

	w.Flush()
	return message.String()
}

func qualifyingResultsToString(results []models.Result) string {
	message := new(strings.Builder)

	w := tabwriter.NewWriter(message, 2, 5, 1, ' ', tabwriter.AlignRight)
	for _, qualPosition := range results {
		code := driverCode(qualPosition.Driver)
		switch {
		case qualPosition.Q3 != "":
			fmt.Fprintf(w, "%s |\t%s |\t\n Q1: %s\n Q2: %s\n Q3: %s\n\n", qualPosition.Position, code, qualPosition.Q1, qualPosition.Q2, qualPosition.Q3)
		case qualPosition.Q2 != "":
			fmt.Fprintf(w, "%s |\t%s |\t\n Q1: %s\n Q2: %s\n\n", qualPosition.Position, code, qualPosition.Q1, qualPosition.Q2)
		default:
			fmt.Fprintf(w, "%s |\t%s |\t\n Q1: %s \n\n", qualPosition.Position, code, qualPosition.Q1)
		}
	}

	w.Flush()
	return message.String()
}

// formatDateTime rewrites every session of race into the user's zone and a
// Russian long date.
func (s *ServiceF1) formatDateTime(race models.Race) models.Race {
	race.Date, race.Time = s.formatSession(models.Session{Date: race.Date, Time: race.Time})

	for _, session := range []*models.Session{
		&race.FirstPractice, &race.SecondPractice, &race.ThirdPractice,
		&race.Qualifying, &race.Sprint, &race.SprintQualifying, &race.SprintShootout,
	} {
		if session.Date != "" {
			session.Date, session.Time = s.formatSession(*session)
		}
	}
	return race
}

func (s *ServiceF1) formatSession(session models.Session) (string, string) {
	start, err := parseStringToTime(session.Date, session.Time)
	if err != nil {
		s.logger.Warn("Error parsing session time", slog.String("date", session.Date), slog.Any("error", err))
		return session.Date, session.Time
	}

	local := start.In(s.loc)
	if session.Time == "" {
		return ruDate(start), ""
	}
	return ruDate(local), local.Format("15:04")
}

// parseStringToTime reads an upstream date and optional "15:04:05Z" time.
func parseStringToTime(dateRace, timeRace string) (time.Time, error) {
	if timeRace == "" {
		return time.Parse(time.DateOnly, dateRace)
	}
	return time.Parse("2006-01-02 15:04:05Z", dateRace+" "+timeRace)
}

func raceStart(race models.Race) time.Time {
	start, _ := parseStringToTime(race.Date, race.Time)
	return start
}

func ruDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), months[t.Month()], t.Year())
}

// findNextRace returns the first race starting after userDate.
func findNextRace(userDate time.Time, races []models.Race) (models.Race, bool) {
	for _, race := range races {
		if raceStart(race).After(userDate) {
			return race, true
		}
	}
	return models.Race{}, false
}

// findLastRace returns the latest race started at or before userDate.
func findLastRace(userDate time.Time, races []models.Race) (models.Race, bool) {
	var last models.Race
	found := false
	for _, race := range races {
		if raceStart(race).After(userDate) {
			break
		}
		last, found = race, true
	}
	return last, found
}

func raceFullInfoToString(race models.Race) string {
	if race.HasSprint() {
		return fmt.Sprintf("Номер этапа: %s,\nНазвание этапа: %s,\nВремя гонки: %s,\n\nПрактика: %s,\nКвалификация: %s,\n\nКвалификация спринта: %s,\nСпринт: %s.\n\n",
			race.Round, race.RaceName, joinSession(race.Date, race.Time), sessionString(race.FirstPractice), sessionString(race.Qualifying),
			sessionString(sprintQualifying(race)), sessionString(race.Sprint))
	}
	return fmt.Sprintf("Номер этапа: %s,\nНазвание этапа: %s,\nВремя гонки: %s,\n\nПервая практика: %s,\nВторая практика: %s,\nТретья практика: %s,\nКвалификация: %s.\n",
		race.Round, race.RaceName, joinSession(race.Date, race.Time), sessionString(race.FirstPractice), sessionString(race.SecondPractice),
		sessionString(race.ThirdPractice), sessionString(race.Qualifying))
}

// sprintQualifying covers the three names the session has had.
func sprintQualifying(race models.Race) models.Session {
	switch {
	case race.SprintQualifying.Date != "":
		return race.SprintQualifying
	case race.SprintShootout.Date != "":
		return race.SprintShootout
	}
	return race.SecondPractice
}

func sessionString(session models.Session) string {
	return joinSession(session.Date, session.Time)
}

func joinSession(date, clock string) string {
	return strings.TrimSpace(date + " " + clock)
}

func makeCarouselGPItem(curRace models.Race) vk_api.CarouselItem {
	buttons := []vk_api.Button{
		{Action: vk_api.ActionBtn{TypeAction: "text", Label: "Результат гонки", Payload: vk_api.CommandPayload("raceRes_" + curRace.Round)}},
		{Action: vk_api.ActionBtn{TypeAction: "text", Label: "Результат квалификации", Payload: vk_api.CommandPayload("qualRes_" + curRace.Round)}},
	}
	if curRace.HasSprint() {
		buttons = append(buttons, vk_api.Button{
			Action: vk_api.ActionBtn{TypeAction: "text", Label: "Результат спринта", Payload: vk_api.CommandPayload("sprRes_" + curRace.Round)},
		})
	}

	return vk_api.CarouselItem{
		Title:       curRace.RaceName,
		Description: fmt.Sprintf("%s\n%s", curRace.Circuit.CircuitName, joinSession(curRace.Date+",", curRace.Time)),
		PhotoID:     vk_api.GPPhotoID,
		Action:      vk_api.ActionBtn{TypeAction: "open_link", Link: curRace.Url},
		Buttons:     buttons,
	}
}
