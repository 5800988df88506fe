package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/ztm"
)

var validateCmd = &cobra.Command{
	Use:   "validate [board]",
	Short: "Checks that each board's line serves its stop and has departures today",
	Args:  cobra.MaximumNArgs(1),
	RunE:  validate,
}

func validate(cmd *cobra.Command, args []string) error {
	boards, err := selectBoards(args)
	if err != nil {
		return err
	}

	client := ztm.NewClientFromConfig(config.Config.API)
	out := cmd.OutOrStdout()
	failed := 0
	for _, b := range boards {
		err := client.ValidateBoard(cmd.Context(), b)
		var verr *ztm.ValidationError
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s: ok\n", b.Name)
		case errors.As(err, &verr):
			failed++
			fmt.Fprintf(out, "%s: %s\n", b.Name, verr.Code)
		default:
			failed++
			fmt.Fprintf(out, "%s: %v\n", b.Name, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d boards failed validation", failed, len(boards))
	}
	return nil
}
