package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/outlinehq/specloc/internal/config"
	"github.com/outlinehq/specloc/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize specloc configuration",
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print every configuration key, its default value, and what it controls",
	Run: func(cmd *cobra.Command, args []string) {
		for _, e := range config.DefaultEntries() {
			fmt.Printf("%-40s %-20v %s\n", e.Key, e.Value, e.Description)
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		path := cfgFile
		if path == "" {
			path = filepath.Join(h.Path(), "config.yaml")
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDefaultsCmd)
	configCmd.AddCommand(configInitCmd)
}
