package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dot5enko/repak/errdefs"
)

var cmdMain = &cobra.Command{
	Use:           "repak",
	Short:         "Builds RPak asset containers from a manifest",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           printUsageAndExit1,
}

func init() {
	cmdMain.AddCommand(cmdBuild, cmdInfo)
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		exitWithError(err)
	}
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func exitWithError(err error) {
	logrus.Debugf("%+v", err)
	color.Red("Error: %s", err.Error())
	os.Exit(errdefs.Code(err))
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errdefs.WrapValidation(err, "log level")
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return nil
}

func field(label string, value any) {
	fmt.Printf("  %-20s %v\n", color.CyanString(label), value)
}
