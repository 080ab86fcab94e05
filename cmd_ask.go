package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Personal-Assistant/app"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Dispatch a single prompt and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

type dispatcher interface {
	Dispatch(ctx context.Context, prompt string) (string, error)
}

// openDispatcher wires the full runtime; the returned func releases it.
var openDispatcher = func(ctx context.Context, settings app.Settings) (dispatcher, func() error, error) {
	rt, err := app.Wire(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	return rt.Orchestrator, rt.Close, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	settings, err := app.LoadSettings()
	if err != nil {
		return err
	}
	logx.Init(settings.Log)

	d, closeFn, err := openDispatcher(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logx.Warn().Err(err).Msg("runtime close")
		}
	}()

	reply, err := d.Dispatch(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
