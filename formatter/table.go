package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rodaine/table"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
)

// WriteTable prints the departures of each view as a text table.
func WriteTable(w io.Writer, views ...board.View) {
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", v.Name, v.LineType)
		if len(v.Departures) == 0 {
			fmt.Fprintln(w, v.Note)
			continue
		}
		tbl := table.New("#", "Time", "Departure", "Direction").WithWriter(w)
		for _, e := range v.Departures {
			tbl.AddRow(strconv.Itoa(e.Index), e.Time, e.Departure, e.Direction)
		}
		tbl.Print()
	}
}
