// Package models holds the typed records returned by the Ergast gateway.
// Field names follow the upstream JSON keys.
package models

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type Circuit struct {
	CircuitId   string   `json:"circuitId"`
	Url         string   `json:"url"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

// Session is one timed part of a race weekend. Date is empty when the
// weekend has no such session.
type Session struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

type Time struct {
	Millis string `json:"millis,omitempty"`
	Time   string `json:"time"`
}

type AverageSpeed struct {
	Units string `json:"units"`
	Speed string `json:"speed"`
}

type FastestLap struct {
	Rank         string       `json:"rank,omitempty"`
	Lap          string       `json:"lap"`
	Time         Time         `json:"Time"`
	AverageSpeed AverageSpeed `json:"AverageSpeed"`
}

// Result is one classified entry of a race, sprint or qualifying session.
// Q1..Q3 are only set for qualifying.
type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText,omitempty"`
	Points       string      `json:"points,omitempty"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid,omitempty"`
	Laps         string      `json:"laps,omitempty"`
	Status       string      `json:"status,omitempty"`
	Time         Time        `json:"Time"`
	FastestLap   FastestLap  `json:"FastestLap"`
	Q1           string      `json:"Q1,omitempty"`
	Q2           string      `json:"Q2,omitempty"`
	Q3           string      `json:"Q3,omitempty"`
}

type Timing struct {
	DriverId string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type Lap struct {
	Number  string   `json:"number"`
	Timings []Timing `json:"Timings"`
}

type PitStop struct {
	DriverId string `json:"driverId"`
	Lap      string `json:"lap,omitempty"`
	Stop     string `json:"stop,omitempty"`
	Time     string `json:"time,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Race is shared by every race-table resource. Only the nested slice that
// matches the requested resource is populated.
type Race struct {
	Season            string    `json:"season"`
	Round             string    `json:"round"`
	Url               string    `json:"url,omitempty"`
	RaceName          string    `json:"raceName"`
	Circuit           Circuit   `json:"Circuit"`
	Date              string    `json:"date"`
	Time              string    `json:"time,omitempty"`
	FirstPractice     Session   `json:"FirstPractice"`
	SecondPractice    Session   `json:"SecondPractice"`
	ThirdPractice     Session   `json:"ThirdPractice"`
	Qualifying        Session   `json:"Qualifying"`
	Sprint            Session   `json:"Sprint"`
	SprintQualifying  Session   `json:"SprintQualifying"`
	SprintShootout    Session   `json:"SprintShootout"`
	Results           []Result  `json:"Results,omitempty"`
	QualifyingResults []Result  `json:"QualifyingResults,omitempty"`
	SprintResults     []Result  `json:"SprintResults,omitempty"`
	Laps              []Lap     `json:"Laps,omitempty"`
	PitStops          []PitStop `json:"PitStops,omitempty"`
}

// HasSprint reports whether the weekend runs a sprint race.
func (r Race) HasSprint() bool {
	return r.Sprint.Date != ""
}
