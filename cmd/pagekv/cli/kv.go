package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	putCmd = &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Write a value",
		Args:  cobra.ExactArgs(2),
		RunE:  runPut,
	}
	getCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Print the entries in [lower, upper) in key order",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print key counts and log sizes",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
)

func init() {
	key := "lower"
	scanCmd.Flags().String(key, "", WrapString("Inclusive lower bound (empty = unbounded)"))
	key = "upper"
	scanCmd.Flags().String(key, "", WrapString("Exclusive upper bound (empty = unbounded)"))
	key = "limit"
	scanCmd.Flags().Int(key, 0, WrapString("Stop after this many entries (0 = all)"))
	key = "keys-only"
	scanCmd.Flags().Bool(key, false, WrapString("Print keys without values"))

	key = "format"
	statsCmd.Flags().String(key, "yaml", WrapString("Output format (json, yaml)"))
}

func runPut(cmd *cobra.Command, args []string) error {
	key, err := DecodeArg(args[0])
	if err != nil {
		return err
	}
	value, err := DecodeArg(args[1])
	if err != nil {
		return err
	}

	db, err := OpenEngine()
	if err != nil {
		return err
	}
	if err := db.Write(key, value); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

func runGet(cmd *cobra.Command, args []string) error {
	key, err := DecodeArg(args[0])
	if err != nil {
		return err
	}

	db, err := OpenEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	value, err := db.Read(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), EncodeOutput(value))
	return nil
}

func runScan(cmd *cobra.Command, _ []string) error {
	lower, err := DecodeArg(viper.GetString("lower"))
	if err != nil {
		return err
	}
	upper, err := DecodeArg(viper.GetString("upper"))
	if err != nil {
		return err
	}
	limit := viper.GetInt("limit")
	keysOnly := viper.GetBool("keys-only")

	db, err := OpenEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	n := 0
	return db.RangeFunc(lower, upper, func(k, v []byte) bool {
		if keysOnly {
			fmt.Fprintln(out, EncodeOutput(k))
		} else {
			fmt.Fprintf(out, "%s\t%s\n", EncodeOutput(k), EncodeOutput(v))
		}
		n++
		return limit <= 0 || n < limit
	})
}

func runStats(cmd *cobra.Command, _ []string) error {
	db, err := OpenEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := db.Stats()
	if err != nil {
		return err
	}
	return render(cmd, viper.GetString("format"), st)
}

func render(cmd *cobra.Command, format string, v any) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format %s", format)
	}
}
