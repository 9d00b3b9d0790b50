// Command racebot serves Formula 1 data from the Ergast API over HTTP, chat
// bots and the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
