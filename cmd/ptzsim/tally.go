package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dennis-eisen/ptzctrl/grid"
)

func TallyCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "tally <camera> <idle|preview|program>",
		Short: "Set one camera's tally on a running simulator",
		Long:  "Cameras are numbered from 1 as on the panel. States may also be given as 0, 1 or 2.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cam, err := strconv.Atoi(args[0])
			if err != nil || cam < 1 {
				return fmt.Errorf("camera must be a number from 1: %q", args[0])
			}
			state, err := parseTally(args[1])
			if err != nil {
				return err
			}
			return putTally(cmd.Context(), server, cam-1, state)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:6789", "simulator base URL")
	return cmd
}

func parseTally(s string) (grid.TallyState, error) {
	for _, t := range []grid.TallyState{grid.TallyIdle, grid.TallyPreview, grid.TallyProgram} {
		if strings.EqualFold(s, t.String()) || s == strconv.Itoa(int(t)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", grid.ErrInvalidTally, s)
}

func putTally(ctx context.Context, server string, cam int, state grid.TallyState) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/tally/%d/%d", strings.TrimRight(server, "/"), cam, int(state))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("set tally: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("set tally: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
