package vk

import (
	"regexp"
	"strconv"
)

// Text commands are regular expressions matched against the lower-cased
// message. The first match in commands wins.
const (
	commandDrSt          command = `личн.*зач[её]т`
	commandCld           command = `календар.*сезона`
	commandNxRc          command = `следующ.*гонк`
	commandConsStFull    command = `куб.*конструктор`
	commandConsSt        command = `(^|\s)кк($|\s)`
	commandLstRc         command = `результат.?\sгонк`
	commandLstQual       command = `результат.?\sквал`
	commandLstSpr        command = `результат.?\sспринт`
	commandWeekend       command = `уикенд`
	commandHelp          command = `что умеешь`
	commandHello         command = `начать`
	commandDaysAfterRace command = `дней без (формулы|f1)`
	commandDaysCut       command = `дбф`
	commandLstGP         command = `ласт гп`
	commandGPs           command = `этапы`
	commandRaceRes       command = `^raceRes_(\d{1,2})$`
	commandQualRes       command = `^qualRes_(\d{1,2})$`
	commandSprRes        command = `^sprRes_(\d{1,2})$`
	commandUnknown       command = ``
)

type command string

var commands = compileCommands(
	commandDrSt,
	commandCld,
	commandNxRc,
	commandConsStFull,
	commandConsSt,
	commandLstRc,
	commandLstQual,
	commandLstSpr,
	commandWeekend,
	commandHelp,
	commandHello,
	commandDaysAfterRace,
	commandDaysCut,
	commandLstGP,
	commandGPs,
	commandRaceRes,
	commandQualRes,
	commandSprRes,
)

type pattern[T ~string] struct {
	name T
	re   *regexp.Regexp
}

func compileCommands[T ~string](names ...T) []pattern[T] {
	out := make([]pattern[T], 0, len(names))
	for _, name := range names {
		out = append(out, pattern[T]{name: name, re: regexp.MustCompile(string(name))})
	}
	return out
}

// match returns the first pattern matching text and its numeric argument,
// or zero when the pattern has none.
func match[T ~string](patterns []pattern[T], text string, unknown T) (T, int) {
	for _, p := range patterns {
		sub := p.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		var arg int
		if len(sub) > 1 {
			arg, _ = strconv.Atoi(sub[1])
		}
		return p.name, arg
	}
	return unknown, 0
}

func getCommand(message string) (command, int) {
	return match(commands, message, commandUnknown)
}
