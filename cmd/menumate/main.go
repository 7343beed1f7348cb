package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "menumate",
		Short: "MenuMate: WhatsApp menu and restaurant advisor",
		Long: "MenuMate reads a photo of a menu or restaurant sent over WhatsApp and replies\n" +
			"with the best reviewed dish, the one to avoid and a diet-friendly option.",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "menumate", version)
		},
	}
}
