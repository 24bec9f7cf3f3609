package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/config"
	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/icon"
	"github.com/melody-cli/melody/key"
	"github.com/melody-cli/melody/media"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

func errUnknownKey(name string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})

	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(closest),
	)
}

// checkValue rejects values that parse but that the player cannot use.
func checkValue(name string, value any) error {
	oneOf := func(options []string) error {
		if s, ok := value.(string); ok && !slices.Contains(options, s) {
			return fmt.Errorf("%s must be one of: %s", name, strings.Join(options, ", "))
		}
		return nil
	}

	switch name {
	case key.PlayerBackend:
		return oneOf(media.Backends())
	case key.IconsVariant:
		return oneOf(icon.AvailableVariants())
	case key.LogsLevel:
		if _, err := logrus.ParseLevel(fmt.Sprint(value)); err != nil {
			return err
		}
	case key.PlayerVolume:
		if v, ok := value.(float64); ok && (v < 0 || v > 1) {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	case key.PlayerVolumeStep:
		if v, ok := value.(float64); ok && (v <= 0 || v > 1) {
			return fmt.Errorf("%s must be greater than 0 and at most 1", name)
		}
	case key.PlayerSeekStep:
		if v, ok := value.(int); ok && v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

// keyArg takes the config key from the first argument or from --key.
func keyArg(cmd *cobra.Command, args []string) string {
	name := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		name = args[0]
	}

	if name == "" {
		handleErr(errors.New("key is required as an argument or --key flag"))
	}

	if _, ok := config.Default[name]; !ok {
		handleErr(errUnknownKey(name))
	}

	return name
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change player settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", nil, "Only show these keys")
	configInfoCmd.Flags().StringP("section", "s", "", "Only show keys of a section, e.g. player or history")
	configInfoCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configInfoCmd.RegisterFlagCompletionFunc("section", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return sections(), cobra.ShellCompDirectiveNoFileComp
	})
}

// sections returns the distinct first segments of every config key.
func sections() []string {
	names := lo.Uniq(lo.Map(lo.Keys(config.Default), func(k string, _ int) string {
		section, _, _ := strings.Cut(k, ".")
		return section
	}))
	slices.Sort(names)
	return names
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe settings with their current and default values",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys    = lo.Must(cmd.Flags().GetStringSlice("key"))
			section = lo.Must(cmd.Flags().GetString("section"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
		)

		for _, k := range keys {
			if _, ok := config.Default[k]; !ok {
				handleErr(errUnknownKey(k))
			}
		}

		if section != "" && !slices.Contains(sections(), section) {
			handleErr(fmt.Errorf("unknown section %s, available: %s", section, strings.Join(sections(), ", ")))
		}

		fields := lo.Filter(lo.Values(config.Default), func(f config.Field, _ int) bool {
			if len(keys) > 0 && !slices.Contains(keys, f.Key) {
				return false
			}
			return section == "" || strings.HasPrefix(f.Key, section+".")
		})
		slices.SortFunc(fields, func(a, b config.Field) int {
			return strings.Compare(a.Key, b.Key)
		})

		if asJson {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		pretty := lo.Map(fields, func(f config.Field, _ int) string {
			return f.Pretty()
		})
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(pretty, "\n\n"))
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "Key to change")
	configSetCmd.Flags().StringSliceP("value", "v", nil, "New value")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Change a setting and save it",
	Example:           "  melody config set player.backend beep\n  melody config set -k player.volume -v 0.6",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		name := keyArg(cmd, args)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}

		field := config.Default[name]
		value, err := field.Parse(raw)
		handleErr(err)
		handleErr(checkValue(name, value))

		viper.Set(name, value)
		handleErr(config.Write())

		success("set %s to %s", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "Key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a setting",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), viper.Get(keyArg(cmd, args)))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := where.ConfigFile()

		if lo.Must(cmd.Flags().GetBool("force")) {
			exists, err := filesystem.API().Exists(path)
			handleErr(err)
			if exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfigAs(path))
		success("wrote config to %s", path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file, falling back to defaults",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(where.ConfigFile()))
		success("deleted config")
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().StringP("key", "k", "", "Key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore settings to their defaults",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for name, field := range config.Default {
				viper.Set(name, field.Value)
			}
			handleErr(config.Write())
			success("reset all config values")
			return
		}

		name := keyArg(cmd, nil)
		viper.Set(name, config.Default[name].Value)
		handleErr(config.Write())
		success("reset %s to %s", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(fmt.Sprint(config.Default[name].Value)))
	},
}
