// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litcorpus/internal/mapper"
)

var mappersCmd = &cobra.Command{
	Use:   "mappers",
	Short: "List the DOI to PDF mappers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range mapper.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the known venues and their dblp streams",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-12s  %-10s  %-24s  %s\n", "KEY", "TYPE", "DBLP", "NAME")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, key := range catalog.Names() {
			v := catalog[key]
			stream := "-"
			if src, err := v.DBLP(); err == nil {
				stream = src.Type + "/" + src.Acronym
			}
			fmt.Fprintf(out, "%-12s  %-10s  %-24s  %s\n", key, v.Type, stream, v.Name)
		}
		fmt.Fprintf(out, "\n%d venues\n", len(catalog))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mappersCmd)
	rootCmd.AddCommand(venuesCmd)
}
