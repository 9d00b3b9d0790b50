package vk

const (
	commandGpInfo  eventCommand = `^gpPage_(\d{1,2})$`
	commandGpList  eventCommand = `^gpListPage_(\d{1,2})$`
	commandNothing eventCommand = ``
)

type eventCommand string

var eventCommands = compileCommands(commandGpInfo, commandGpList)

// getEventCommand returns the callback command in event and its number: the
// round for commandGpInfo, the keyboard page for commandGpList.
func getEventCommand(event string) (eventCommand, int) {
	return match(eventCommands, event, commandNothing)
}
