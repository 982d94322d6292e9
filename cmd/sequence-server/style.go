package main

import (
	"slices"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/sequence/session"
)

func printSummary(s session.Snapshot) {
	pterm.DefaultSection.Println("Session " + s.SessionID)
	pterm.Info.Printfln("Status: %s, turn %d, %d cards dealt", s.Status, s.Turn, s.Dealt)
	if len(s.Names) == 0 {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(summaryTable(s)).Render()
}

// summaryTable lists the players in turn order, or by id before the start.
func summaryTable(s session.Snapshot) pterm.TableData {
	data := pterm.TableData{{"Id", "Name", "Pegs", "Cards", ""}}
	ids := s.Order
	if len(ids) == 0 {
		for id := range s.Names {
			ids = append(ids, id)
		}
		slices.Sort(ids)
	}
	pegs := make(map[int]int)
	for _, id := range s.Pegs {
		pegs[int(id)]++
	}
	for _, id := range ids {
		name, ok := s.Names[id]
		if !ok {
			continue
		}
		mark := ""
		switch id {
		case s.Winner:
			mark = pterm.LightGreen("winner")
		case s.Active:
			mark = pterm.LightYellow("playing")
		}
		data = append(data, []string{
			strconv.Itoa(int(id)),
			name,
			strconv.Itoa(pegs[int(id)]),
			strconv.Itoa(len(s.Hands[id])),
			mark,
		})
	}
	return data
}
