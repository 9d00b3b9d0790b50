package models

type Driver struct {
	DriverId        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber,omitempty"`
	Code            string `json:"code,omitempty"`
	Url             string `json:"url,omitempty"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Nationality     string `json:"nationality,omitempty"`
}

// FullName returns "GivenName FamilyName".
func (d Driver) FullName() string {
	return d.GivenName + " " + d.FamilyName
}

type Constructor struct {
	ConstructorId string `json:"constructorId"`
	Url           string `json:"url,omitempty"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality,omitempty"`
}

type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

type ConstructorStanding struct {
	Position     string      `json:"position,omitempty"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}

type Season struct {
	Season string `json:"season"`
	Url    string `json:"url"`
}

type Status struct {
	StatusId string `json:"statusId"`
	Count    string `json:"count"`
	Status   string `json:"status"`
}

// Pagination is the paging metadata of an MRData envelope. Values stay as
// the upstream strings.
type Pagination struct {
	Limit  string `json:"limit,omitempty"`
	Offset string `json:"offset,omitempty"`
	Total  string `json:"total,omitempty"`
}
