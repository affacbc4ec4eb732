// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify TARGET",
	Short: "Check the stored PDFs of a corpus against its metadata",
	Long: `Verify opens every PDF flagged as downloaded in the metadata of TARGET,
counts its pages, looks for the record's DOI in the first pages and
checks that the PDF is listed in the manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("root", ".", "directory the corpus folder lives in")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	if !cmd.Flags().Changed("root") && viper.IsSet("root") {
		root = viper.GetString("root")
	}
	layout := store.NewLayout(root, args[0])

	records, err := store.New(layout.MetadataFile(), slog.Default()).LoadRecords()
	if err != nil {
		return err
	}
	rep, err := verify.Corpus(layout, records, slog.Default())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range rep.Problems {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintf(out, "%d PDFs checked, %d pages, %d problems\n", rep.Checked, rep.Pages, len(rep.Problems))
	if !rep.OK() {
		return fmt.Errorf("corpus %s has %d problems", args[0], len(rep.Problems))
	}
	return nil
}
