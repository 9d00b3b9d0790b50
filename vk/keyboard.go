package vk

import (
	"encoding/json"
	"fmt"
)

// GPPhotoID is the picture attached to grand prix carousel cards.
const GPPhotoID = "-219009582_457239025"

type Kb struct {
	OneTime bool       `json:"one_time,omitempty"`
	Inline  bool       `json:"inline,omitempty"`
	Buttons [][]Button `json:"buttons"`
}

type Button struct {
	Action ActionBtn `json:"action"`
	Color  string    `json:"color,omitempty"`
}

type ActionBtn struct {
	TypeAction string `json:"type"`
	Link       string `json:"link,omitempty"`
	Label      string `json:"label,omitempty"`
	Payload    string `json:"payload,omitempty"`
}

type Carousel struct {
	Type     string         `json:"type"`
	Elements []CarouselItem `json:"elements"`
}

type CarouselItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PhotoID     string    `json:"photo_id,omitempty"`
	Action      ActionBtn `json:"action"`
	Buttons     []Button  `json:"buttons"`
}

// Payload is the JSON attached to keyboard buttons.
type Payload struct {
	Command string `json:"command"`
}

// CommandPayload encodes command as a button payload.
func CommandPayload(command string) string {
	b, _ := json.Marshal(Payload{Command: command})
	return string(b)
}

func callbackButton(label, command, color string) Button {
	return Button{Action: ActionBtn{TypeAction: "callback", Label: label, Payload: CommandPayload(command)}, Color: color}
}

// makeKeyboard lays out countEl round buttons in pages of row*col buttons and
// returns page numPage with its navigation row.
func makeKeyboard(row, col, numPage, countEl int, inline bool) (Kb, error) {
	sizeKb := row * col
	if sizeKb <= 0 {
		return Kb{}, fmt.Errorf("keyboard of %dx%d buttons is empty", row, col)
	}
	pages := (countEl + sizeKb - 1) / sizeKb

	visKb := min(countEl-sizeKb*(numPage-1), sizeKb)
	if numPage < 1 || visKb <= 0 {
		return Kb{}, fmt.Errorf("page %d does not exist for %d elements and %d buttons per page", numPage, countEl, sizeKb)
	}

	buttons := [][]Button{}
	btnsRow := make([]Button, 0, col)
	addedNum := sizeKb * (numPage - 1)
	for i := 1; i <= visKb; i++ {
		round := i + addedNum
		btnsRow = append(btnsRow, callbackButton(fmt.Sprintf("%d", round), fmt.Sprintf("gpPage_%d", round), ""))

		if i%col == 0 || i == visKb {
			buttons = append(buttons, btnsRow)
			btnsRow = make([]Button, 0, col)
		}
	}

	var nav []Button
	if numPage > 1 {
		nav = append(nav, callbackButton("Назад", fmt.Sprintf("gpListPage_%d", numPage-1), "primary"))
	}
	if numPage < pages {
		nav = append(nav, callbackButton("Далее", fmt.Sprintf("gpListPage_%d", numPage+1), "primary"))
	} else if pages > 1 {
		nav = append(nav, callbackButton("В начало", "gpListPage_1", "primary"))
	}
	if len(nav) > 0 {
		buttons = append(buttons, nav)
	}

	return Kb{Inline: inline, Buttons: buttons}, nil
}
