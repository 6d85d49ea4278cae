package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "pagekv",
		Short: "embedded page-aligned key-value store",
		Long: fmt.Sprintf(`pagekv (v%s)

Inspect and operate a pagekv directory: 256 append-only partition logs,
one per first key byte, replayed into ordered in-memory indexes on open.`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return BindCommandFlags(cmd) },
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pagekv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pagekv v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(InitConfig)

	// Add Commands
	RootCmd.AddCommand(putCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(backupCmd)
	RootCmd.AddCommand(restoreCmd)
	RootCmd.AddCommand(benchCmd)
	RootCmd.AddCommand(metricsCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "dir"
	RootCmd.PersistentFlags().String(key, "./data", WrapString("Directory holding the 256 partition logs"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))
	key = "direct-io"
	RootCmd.PersistentFlags().Bool(key, true, WrapString("Write partition logs with O_DIRECT where the file system allows it"))
	key = "sync"
	RootCmd.PersistentFlags().Bool(key, false, WrapString("fdatasync the partition log after every write"))
	key = "skip-unreadable"
	RootCmd.PersistentFlags().Bool(key, false, WrapString("Start unreadable partitions empty instead of failing to open"))
	key = "hex"
	RootCmd.PersistentFlags().Bool(key, false, WrapString("Read keys and values from arguments and print them hex-encoded"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
