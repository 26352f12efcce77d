package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tutorhub/tutorhub/internal"
)

var (
	log *logrus.Logger

	cfgFile     string
	showVersion bool
)

var cmd = &cobra.Command{
	Use:   "tutorhub",
	Short: "tutorhub serves AI generation and semantic search for the TutorHub learning platform",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

// Execute executes the root cobra command.
func Execute() {
	log = internal.GetLogger()

	cmd.PersistentFlags().
		StringVarP(&cfgFile, "config", "c", "", "config file (default is config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
