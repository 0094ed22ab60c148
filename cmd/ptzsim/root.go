package main

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	return NewRoot().Execute()
}

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "ptzsim",
		Short:        "Simulated PTZ preset server",
		SilenceUsage: true,
	}
	root.AddCommand(ServeCmd(), TallyCmd(), LayoutCmd())
	root.SetOut(os.Stdout)
	return root
}
