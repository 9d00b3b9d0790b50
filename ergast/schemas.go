package ergast

// Record contracts shared between envelopes.

func locationSchema() node {
	return object(
		required("lat", str()),
		required("long", str()),
		required("locality", str()),
		required("country", str()),
	)
}

func circuitSchema() node {
	return object(
		required("circuitId", str()),
		required("url", str()),
		required("circuitName", str()),
		required("Location", locationSchema()),
	)
}

func driverSchema() node {
	return object(
		required("driverId", str()),
		optional("permanentNumber", str()),
		optional("code", str()),
		optional("url", str()),
		required("givenName", str()),
		required("familyName", str()),
		optional("dateOfBirth", str()),
		optional("nationality", str()),
	)
}

func constructorSchema() node {
	return object(
		required("constructorId", str()),
		optional("url", str()),
		required("name", str()),
		optional("nationality", str()),
	)
}

func timeSchema() node {
	return object(
		optional("millis", str()),
		required("time", str()),
	)
}

func sessionSchema() node {
	return object(
		required("date", str()),
		optional("time", str()),
	)
}

// raceSchema is the race header every race-table record carries, plus extra.
func raceSchema(extra ...property) node {
	props := []property{
		required("season", str()),
		required("round", str()),
		optional("url", str()),
		required("raceName", str()),
		required("Circuit", circuitSchema()),
		required("date", str()),
		optional("time", str()),
	}
	return object(append(props, extra...)...)
}

func resultSchema() node {
	return object(
		required("number", str()),
		required("position", str()),
		required("positionText", str()),
		required("points", str()),
		required("Driver", driverSchema()),
		optional("Constructor", constructorSchema()),
		optional("grid", str()),
		optional("laps", str()),
		optional("status", str()),
		optional("Time", timeSchema()),
		optional("FastestLap", object(
			required("rank", str()),
			required("lap", str()),
			required("Time", timeSchema()),
			required("AverageSpeed", object(
				required("units", str()),
				required("speed", str()),
			)),
		)),
	)
}

func sprintResultSchema() node {
	return object(
		required("number", str()),
		required("position", str()),
		required("positionText", str()),
		required("points", str()),
		required("Driver", driverSchema()),
		required("Constructor", constructorSchema()),
		optional("grid", str()),
		optional("laps", str()),
		optional("status", str()),
		optional("Time", timeSchema()),
		optional("FastestLap", object(
			optional("rank", str()),
			required("lap", str()),
			required("Time", object(required("time", str()))),
		)),
	)
}

func qualifyingResultSchema() node {
	return object(
		required("number", str()),
		optional("position", str()),
		required("Driver", driverSchema()),
		required("Constructor", constructorSchema()),
		optional("Q1", str()),
		optional("Q2", str()),
		optional("Q3", str()),
	)
}

// envelope wraps a table in MRData with the optional paging metadata.
func envelope(tableName string, table node) node {
	return object(
		required("MRData", object(
			optional("xmlns", str()),
			optional("series", str()),
			optional("url", str()),
			optional("limit", str()),
			optional("offset", str()),
			optional("total", str()),
			required(tableName, table),
		)),
	)
}

func raceTable(records node, echoed ...string) node {
	props := []property{required("Races", arrayOf(records))}
	for _, name := range echoed {
		props = append(props, optional(name, str()))
	}
	return object(props...)
}

func standingsTable(listName string, standing node, echoed ...string) node {
	list := object(
		required("season", str()),
		required("round", str()),
		required(listName, arrayOf(standing)),
	)
	props := []property{required("StandingsLists", arrayOf(list))}
	for _, name := range echoed {
		props = append(props, optional(name, str()))
	}
	return object(props...)
}

func envelopes() map[Kind]node {
	return map[Kind]node{
		KindCircuits: envelope("CircuitTable", object(
			required("Circuits", arrayOf(circuitSchema())),
			optional("position", str()),
		)),
		KindConstructors: envelope("ConstructorTable", object(
			required("Constructors", arrayOf(constructorSchema())),
			optional("position", str()),
		)),
		KindConstructorStandings: envelope("StandingsTable", standingsTable("ConstructorStandings", object(
			optional("position", str()),
			required("positionText", str()),
			required("points", str()),
			required("wins", str()),
			required("Constructor", constructorSchema()),
		), "season", "round")),
		KindDriverStandings: envelope("StandingsTable", standingsTable("DriverStandings", object(
			required("position", str()),
			required("positionText", str()),
			required("points", str()),
			required("wins", str()),
			required("Driver", driverSchema()),
			required("Constructors", arrayOf(constructorSchema())),
		), "season", "round", "driverId")),
		KindDrivers: envelope("DriverTable", object(
			required("Drivers", arrayOf(driverSchema())),
			optional("season", str()),
			optional("circuitId", str()),
		)),
		KindLaps: envelope("RaceTable", raceTable(raceSchema(
			required("Laps", arrayOf(object(
				required("number", str()),
				required("Timings", arrayOf(object(
					required("driverId", str()),
					required("position", str()),
					required("time", str()),
				))),
			))),
		), "season", "round", "driverId", "constructorId", "lap")),
		KindPitStops: envelope("RaceTable", raceTable(raceSchema(
			required("PitStops", arrayOf(object(
				required("driverId", str()),
				optional("lap", str()),
				optional("stop", str()),
				optional("time", str()),
				optional("duration", str()),
			))),
		), "season", "round", "lap", "stop", "driverId")),
		KindQualifying: envelope("RaceTable", raceTable(raceSchema(
			required("QualifyingResults", arrayOf(qualifyingResultSchema())),
		), "season", "round")),
		KindRaces: envelope("RaceTable", raceTable(raceSchema(
			optional("FirstPractice", sessionSchema()),
			optional("SecondPractice", sessionSchema()),
			optional("ThirdPractice", sessionSchema()),
			optional("Qualifying", sessionSchema()),
			optional("Sprint", sessionSchema()),
			optional("SprintQualifying", sessionSchema()),
			optional("SprintShootout", sessionSchema()),
		), "season", "round")),
		KindResults: envelope("RaceTable", raceTable(raceSchema(
			required("Results", arrayOf(resultSchema())),
		), "season", "round")),
		KindSeasons: envelope("SeasonTable", object(
			required("Seasons", arrayOf(object(
				required("season", str()),
				required("url", str()),
			))),
			optional("constructorId", str()),
		)),
		KindSprint: envelope("RaceTable", raceTable(raceSchema(
			required("SprintResults", arrayOf(sprintResultSchema())),
		), "season", "round", "driverId")),
		KindStatus: envelope("StatusTable", object(
			required("Status", arrayOf(object(
				required("statusId", str()),
				required("count", str()),
				required("status", str()),
			))),
			optional("season", str()),
			optional("constructorId", str()),
		)),
	}
}
