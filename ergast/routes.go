package ergast

// Kind names a resource of the Ergast API.
type Kind string

const (
	KindCircuits             Kind = "circuits"
	KindConstructors         Kind = "constructors"
	KindConstructorStandings Kind = "constructor-standings"
	KindDriverStandings      Kind = "driver-standings"
	KindDrivers              Kind = "drivers"
	KindLaps                 Kind = "laps"
	KindPitStops             Kind = "pitstops"
	KindQualifying           Kind = "qualifying"
	KindRaces                Kind = "races"
	KindResults              Kind = "results"
	KindSeasons              Kind = "seasons"
	KindSprint               Kind = "sprint"
	KindStatus               Kind = "status"
)

// Kinds lists every supported resource.
var Kinds = []Kind{
	KindCircuits, KindConstructors, KindConstructorStandings, KindDriverStandings,
	KindDrivers, KindLaps, KindPitStops, KindQualifying, KindRaces, KindResults,
	KindSeasons, KindSprint, KindStatus,
}

// ParseKind maps a resource name to its Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := resources[k]
	return k, ok
}

// resource is the routing table of one kind. Routes are tried in order; a
// route matches when every {field} placeholder in it is present in the
// query. The last route of every table has no optional placeholders.
type resource struct {
	required []Field
	routes   []string
}

var resources = map[Kind]resource{
	KindDrivers: {
		routes: []string{
			"drivers/{driverId}",
			"constructors/{constructorId}/drivers",
			"fastest/{fastestRank}/drivers",
			"grid/{gridPosition}/drivers",
			"results/{resultsPosition}/drivers",
			"status/{statusId}/drivers",
			"{season}/{round}/drivers",
			"{season}/circuits/{circuitId}/drivers",
			"{season}/drivers",
			"drivers",
		},
	},
	KindCircuits: {
		routes: []string{
			"{season}/{round}/circuits",
			"circuits/{circuitId}/circuits",
			"constructors/{constructorId}/circuits",
			"drivers/{driverId}/circuits",
			"fastest/{fastestRank}/circuits",
			"grid/{gridPosition}/circuits",
			"results/{resultsPosition}/circuits",
			"status/{statusId}/circuits",
			"{season}/circuits",
			"circuits",
		},
	},
	KindConstructors: {
		routes: []string{
			"{season}/{round}/constructors",
			"circuits/{circuitId}/constructors",
			"constructors/{constructorId}",
			"drivers/{driverId}/constructors",
			"fastest/{fastestRank}/constructors",
			"grid/{gridPosition}/constructors",
			"results/{resultsPosition}/constructors",
			"status/{statusId}/constructors",
			"{season}/constructors",
			"constructors",
		},
	},
	KindConstructorStandings: {
		required: []Field{FieldSeason},
		routes: []string{
			"{season}/{round}/constructorstandings",
			"{season}/constructors/{constructorId}/constructorstandings",
			"{season}/constructorstandings/{position}",
			"{season}/constructorstandings",
		},
	},
	KindDriverStandings: {
		required: []Field{FieldSeason},
		routes: []string{
			"{season}/{round}/driverstandings",
			"{season}/drivers/{driverId}/driverstandings",
			"{season}/driverstandings/{position}",
			"{season}/driverstandings",
		},
	},
	KindLaps: {
		required: []Field{FieldSeason, FieldRound},
		routes: []string{
			"{season}/{round}/laps/{lapNumber}",
			"{season}/{round}/drivers/{driverId}/laps",
			"{season}/{round}/constructors/{constructorId}/laps",
			"{season}/{round}/laps",
		},
	},
	KindPitStops: {
		required: []Field{FieldSeason, FieldRound},
		routes: []string{
			"{season}/{round}/pitstops/{stopNumber}",
			"{season}/{round}/drivers/{driverId}/pitstops",
			"{season}/{round}/laps/{lapNumber}/pitstops",
			"{season}/{round}/pitstops",
		},
	},
	KindQualifying: {
		routes: []string{
			"{season}/{round}/qualifying",
			"circuits/{circuitId}/qualifying",
			"constructors/{constructorId}/qualifying",
			"drivers/{driverId}/qualifying",
			"grid/{gridPosition}/qualifying",
			"fastest/{fastestRank}/qualifying",
			"status/{statusId}/qualifying",
			"{season}/qualifying",
			"qualifying",
		},
	},
	KindRaces: {
		routes: []string{
			"{season}/{round}/races",
			"circuits/{circuitId}/races",
			"constructors/{constructorId}/races",
			"drivers/{driverId}/races",
			"grid/{gridPosition}/races",
			"status/{statusId}/races",
			"{season}/races",
			"races",
		},
	},
	KindResults: {
		routes: []string{
			"{season}/{round}/results",
			"circuits/{circuitId}/results",
			"constructors/{constructorId}/results",
			"drivers/{driverId}/results",
			"fastest/{fastestRank}/results",
			"grid/{gridPosition}/results",
			"status/{statusId}/results",
			"{season}/results",
			"results",
		},
	},
	KindSeasons: {
		routes: []string{
			"{season}/seasons",
			"circuits/{circuitId}/seasons",
			"constructors/{constructorId}/seasons",
			"drivers/{driverId}/seasons",
			"grid/{gridPosition}/seasons",
			"status/{statusId}/seasons",
			"seasons",
		},
	},
	KindSprint: {
		routes: []string{
			"{season}/{round}/sprint",
			"circuits/{circuitId}/sprint",
			"constructors/{constructorId}/sprint",
			"drivers/{driverId}/sprint",
			"grid/{gridPosition}/sprint",
			"status/{statusId}/sprint",
			"{season}/sprint",
			"sprint",
		},
	},
	KindStatus: {
		routes: []string{
			"{season}/{round}/status",
			"circuits/{circuitId}/status",
			"constructors/{constructorId}/status",
			"drivers/{driverId}/status",
			"grid/{gridPosition}/status",
			"results/{resultsPosition}/status",
			"fastest/{fastestRank}/status",
			"status/{statusId}/status",
			"{season}/status",
			"status",
		},
	},
}
