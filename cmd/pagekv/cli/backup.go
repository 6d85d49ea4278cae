package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/pagekv"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup <name>",
		Short: "Write a snapshot of every entry to a local directory, S3 or MinIO",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackup,
	}
	restoreCmd = &cobra.Command{
		Use:   "restore <name>",
		Short: "Write every entry of a snapshot into the directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{backupCmd, restoreCmd} {
		SetupBlobStoreFlags(cmd)
		cmd.Flags().Int64("rate-limit", 0, WrapString("Throttle snapshot IO to this many bytes per second (0 = unlimited)"))
		cmd.Flags().String("format", "yaml", WrapString("Output format of the summary (json, yaml)"))
	}
	backupCmd.Flags().String("compression", "zstd", WrapString("Snapshot compression (none, snappy, lz4, zstd)"))
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	compression, err := pagekv.ParseCompression(viper.GetString("compression"))
	if err != nil {
		return err
	}

	store, location, err := GetBlobStore(ctx)
	if err != nil {
		return err
	}

	db, err := OpenEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.BackupTo(ctx, store, args[0],
		pagekv.WithBackupCompression(compression),
		pagekv.WithBackupRateLimit(viper.GetInt64("rate-limit")),
	)
	if err != nil {
		return err
	}

	return render(cmd, viper.GetString("format"), struct {
		Location string            `json:"location" yaml:"location"`
		Name     string            `json:"name" yaml:"name"`
		Info     pagekv.BackupInfo `json:"info" yaml:"info"`
	}{location, args[0], info})
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, location, err := GetBlobStore(ctx)
	if err != nil {
		return err
	}

	// --rate-limit is applied through the engine's resource controller.
	db, err := OpenEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.RestoreFrom(ctx, store, args[0])
	if err != nil {
		return err
	}
	if err := db.Sync(); err != nil {
		return err
	}

	return render(cmd, viper.GetString("format"), struct {
		Location string             `json:"location" yaml:"location"`
		Name     string             `json:"name" yaml:"name"`
		Info     pagekv.RestoreInfo `json:"info" yaml:"info"`
	}{location, args[0], info})
}
