package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recipeops/ladle/internal/catalog"
	"github.com/recipeops/ladle/internal/config"
	"github.com/recipeops/ladle/internal/home"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [path]",
	Short: "Inspect the product catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			dir, err := home.Resolve(homeDir)
			if err != nil {
				return err
			}
			path = dir.CatalogPath()
		}

		snap, err := catalog.Load(path)
		if err != nil {
			return err
		}

		fmt.Printf("%d products in %s\n", snap.Len(), path)
		return printOutput(snap.Products())
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := home.Resolve(homeDir)
		if err != nil {
			return err
		}
		if err := dir.Ensure(); err != nil {
			return err
		}

		if _, err := os.Stat(dir.ConfigPath()); err == nil {
			fmt.Printf("config already exists at %s\n", dir.ConfigPath())
			return nil
		}

		if err := config.WriteDefault(dir.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", dir.ConfigPath())
		return nil
	},
}
