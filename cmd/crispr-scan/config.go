package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/crispr-scan/internal/crispr"
	"github.com/inodb/crispr-scan/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crispr-scan configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.crispr-scan.yaml.",
		Example: `  crispr-scan config                              # show all config
  crispr-scan config set nuclease.guide_length 20   # set the guide length
  crispr-scan config get nuclease.pam               # get a value`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/.crispr-scan.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// settingParsers lists the keys config set accepts. Each parser validates a
// value and returns it in the type scan reads it back as.
var settingParsers = map[string]func(key, value string) (any, error){
	"verbose":               parseBoolSetting,
	"scan.output_dir":       parseStringSetting,
	"scan.publish_dir":      parseStringSetting,
	"scan.format":           parseFormatSetting,
	"scan.strand":           parseStrandSetting,
	"scan.workers":          parseWorkersSetting,
	"nuclease.pam":          parseNucleaseSetting,
	"nuclease.guide_length": parseNucleaseSetting,
	"nuclease.cut_offset":   parseNucleaseSetting,
	"store.path":            parseStringSetting,
	"store.reuse":           parseBoolSetting,
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	parse, ok := settingParsers[key]
	if !ok {
		return usageError{fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(settingKeys(), ", "))}
	}
	v, err := parse(key, value)
	if err != nil {
		return usageError{fmt.Errorf("invalid value for %s: %w", key, err)}
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		cfgFile, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingParsers))
	for k := range settingParsers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseStringSetting(_, value string) (any, error) {
	return value, nil
}

func parseBoolSetting(_, value string) (any, error) {
	switch value {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}

func parseFormatSetting(_, value string) (any, error) {
	if _, err := output.NewWriter(value, io.Discard); err != nil {
		return nil, err
	}
	return value, nil
}

func parseStrandSetting(_, value string) (any, error) {
	if _, err := crispr.ParseStrands(value); err != nil {
		return nil, err
	}
	return value, nil
}

func parseWorkersSetting(_, value string) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", n)
	}
	return n, nil
}

// parseNucleaseSetting checks the new value together with the other
// configured nuclease settings, so a stored combination always scans.
func parseNucleaseSetting(key, value string) (any, error) {
	pam := configString("nuclease.pam", crispr.DefaultPAM)
	guideLen := configInt("nuclease.guide_length", crispr.DefaultGuideLen)
	cutOffset := configInt("nuclease.cut_offset", crispr.DefaultCutOffset)

	var n int
	if key != "nuclease.pam" {
		var err error
		if n, err = strconv.Atoi(value); err != nil {
			return nil, err
		}
	}
	switch key {
	case "nuclease.pam":
		pam = value
	case "nuclease.guide_length":
		guideLen = n
	case "nuclease.cut_offset":
		cutOffset = n
	}

	p, err := crispr.NewParams(pam, guideLen, cutOffset)
	if err != nil {
		return nil, err
	}
	if key == "nuclease.pam" {
		return p.PAM.String(), nil
	}
	return n, nil
}

func configString(key, fallback string) string {
	if !viper.IsSet(key) {
		return fallback
	}
	return viper.GetString(key)
}

func configInt(key string, fallback int) int {
	if !viper.IsSet(key) {
		return fallback
	}
	return viper.GetInt(key)
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
