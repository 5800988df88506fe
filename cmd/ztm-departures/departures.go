package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/formatter"
	"github.com/theoremus-urban-solutions/ztm-departures/ztm"
)

var departuresCmd = &cobra.Command{
	Use:   "departures [board]",
	Short: "Prints the next departures of one board, or of all boards",
	Args:  cobra.MaximumNArgs(1),
	RunE:  departures,
}

var (
	format string
	count  int
)

func init() {
	departuresCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|siri|pb")
	departuresCmd.Flags().IntVarP(&count, "count", "n", 0, "Number of departures (1-3, default from config)")
}

func departures(cmd *cobra.Command, args []string) error {
	if count < 0 || count > board.MaxDepartures {
		return fmt.Errorf("--count must be between 1 and %d", board.MaxDepartures)
	}
	boards, err := selectBoards(args)
	if err != nil {
		return err
	}

	client := ztm.NewClientFromConfig(config.Config.API)
	settings := board.SettingsFromConfig(config.Config)
	now := time.Now()
	views := make([]board.View, 0, len(boards))
	for _, bc := range boards {
		b := board.New(bc, client, settings)
		if err := b.Refresh(cmd.Context()); err != nil {
			return err
		}
		views = append(views, b.ViewN(now, count))
	}
	return render(cmd.OutOrStdout(), format, now, views)
}

func selectBoards(args []string) ([]config.Board, error) {
	if len(args) == 0 {
		if len(config.Config.Boards) == 0 {
			return nil, fmt.Errorf("no boards configured")
		}
		return config.Config.Boards, nil
	}
	b, ok := config.SelectBoard(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown board %q", args[0])
	}
	return []config.Board{b}, nil
}

func render(w io.Writer, format string, now time.Time, views []board.View) error {
	switch format {
	case "table":
		formatter.WriteTable(w, views...)
	case "json":
		var v any = views
		if len(views) == 1 {
			v = views[0]
		}
		_, err := fmt.Fprintln(w, string(formatter.BuildJSON(v)))
		return err
	case "siri":
		deliveries := make([]siri.EstimatedTimetableDelivery, 0, len(views))
		for _, v := range views {
			deliveries = append(deliveries, formatter.BuildEstimatedTimetable(v, now, codespace))
		}
		res := formatter.WrapEstimatedTimetableResponse(now, codespace, deliveries...)
		_, err := fmt.Fprintln(w, string(formatter.BuildJSON(res)))
		return err
	case "pb":
		data, err := formatter.MarshalTripUpdates(formatter.BuildTripUpdates(now, views...))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
