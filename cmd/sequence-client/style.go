package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/sequence/client"
	"github.com/luca-patrignani/sequence/domain/sequence"
)

// pegColors paints the pegs of the players in turn order.
var pegColors = []pterm.Color{pterm.BgRed, pterm.BgBlue, pterm.BgGreen, pterm.BgMagenta}

func playerName(s client.State, id sequence.PlayerID) string {
	if name, ok := s.Names[id]; ok {
		return name
	}
	return "Player #" + strconv.Itoa(int(id))
}

func pegColor(s client.State, id sequence.PlayerID) pterm.Color {
	for i, o := range s.Order {
		if o == id {
			return pegColors[i%len(pegColors)]
		}
	}
	return pterm.BgGray
}

func describeOrder(s client.State) string {
	names := make([]string, len(s.Order))
	for i, id := range s.Order {
		names[i] = pegColor(s, id).Sprint(" " + playerName(s, id) + " ")
	}
	return strings.Join(names, " > ")
}

// boardTable renders the board with the x coordinates as header and the y
// coordinate leading every row. Occupied cells take the color of their owner.
func boardTable(s client.State) pterm.TableData {
	rules := s.Game.Rules()
	header := []string{""}
	for x := 0; x < rules.Columns; x++ {
		header = append(header, strconv.Itoa(x))
	}
	data := pterm.TableData{header}
	for y := 0; y < rules.Rows; y++ {
		row := []string{strconv.Itoa(y)}
		for x := 0; x < rules.Columns; x++ {
			at := sequence.Coordinate{X: x, Y: y}
			code, _ := s.Game.CardAt(at)
			cell := string(code)
			if id, ok := s.Game.Occupant(at); ok {
				cell = pegColor(s, id).Sprint(cell)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}
	return data
}

// handOptions lists the hand, one option per card, marking the dead ones.
func handOptions(s client.State) []string {
	rules := s.Game.Rules()
	options := make([]string, len(s.Hand))
	for i, code := range s.Hand {
		option := fmt.Sprintf("%d. %s", i+1, rules.Describe(code))
		if s.Dead(i) {
			option += " (dead)"
		}
		options[i] = option
	}
	return options
}

func cellOptions(s client.State, i int) []string {
	cells := s.Playable(i)
	options := make([]string, len(cells))
	for j, at := range cells {
		options[j] = at.String()
	}
	return options
}

func printState(s client.State) {
	if s.Game == nil {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(boardTable(s)).Render()

	rules := s.Game.Rules()
	hand := make([]string, len(s.Hand))
	for i, code := range s.Hand {
		hand[i] = rules.Describe(code)
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	title := pterm.LightYellow("|" + playerName(s, s.ID) + "|")
	info := pterm.Sprintfln("Turn %d: %s\n%s", s.Turn, playerName(s, s.Active), pegColor(s, s.ID).Sprint(strings.Join(hand, " - ")))
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{{Data: pbox.WithTitle(title).WithTitleTopCenter().Sprint(info)}},
	}).Render()
}
