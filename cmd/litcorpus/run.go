// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litcorpus/internal/bibtex"
	"github.com/pdiddy/litcorpus/internal/dblp"
	"github.com/pdiddy/litcorpus/internal/download"
	"github.com/pdiddy/litcorpus/internal/httputil"
	"github.com/pdiddy/litcorpus/internal/logging"
	"github.com/pdiddy/litcorpus/internal/mapper"
	"github.com/pdiddy/litcorpus/internal/metrics"
	"github.com/pdiddy/litcorpus/internal/names"
	"github.com/pdiddy/litcorpus/internal/pipeline"
	"github.com/pdiddy/litcorpus/internal/secrets"
	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run TARGET [EXISTING_FOLDERS...]",
	Short: "Fetch metadata, name records and download PDFs for a venue target",
	Long: `Run builds the corpus of TARGET, a venue and a year or volume number such
as ICSE-2024 or TSE-48. The steps fetch, names, bibtex and download run in
order; steps completed by an earlier run of the same target are skipped.

EXISTING_FOLDERS are earlier corpora whose identifiers must not be reused.
Relative folders are looked up under --root first, then as given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	home, _ := os.UserHomeDir()

	f := runCmd.Flags()
	f.String("grouping", string(types.GroupByYear), "interpret the target number as a year or a volume")
	f.String("mapper", "HtmlParser", "DOI to PDF mapper ("+strings.Join(mapper.Names(), ", ")+")")
	f.String("metadata", "dblp", "metadata source")
	f.Int("sample", -1, "download the PDFs of a random sample of this size (negative for all)")
	f.Int("maxwait", 20, "upper bound in seconds of the wait after each download")
	f.String("downloaddir", filepath.Join(home, "Downloads"), "browser download directory")
	f.Bool("longname", false, "append the first title keyword to identifiers")
	f.String("root", ".", "directory the corpus folder is created in")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout")
	f.Duration("request-delay", download.DefaultRequestDelay, "minimum interval between PDF requests")
	f.Duration("page-delay", dblp.DefaultPageDelay, "delay between dblp page requests")
	f.String("log-dir", "log", "directory for rotated log files (empty disables file logging)")

	for _, name := range []string{
		"grouping", "mapper", "metadata", "sample", "maxwait", "downloaddir", "longname",
		"root", "timeout", "request-delay", "page-delay", "log-dir",
	} {
		viper.BindPFlag(name, f.Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	target, existing := args[0], args[1:]

	if src := viper.GetString("metadata"); src != "dblp" {
		return fmt.Errorf("unknown metadata source %q (only dblp is supported)", src)
	}
	grouping := types.Grouping(viper.GetString("grouping"))
	if grouping != types.GroupByYear && grouping != types.GroupByVolume {
		return fmt.Errorf("unknown grouping %q (want year or volume)", grouping)
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	venue, number, err := catalog.ParseTarget(target)
	if err != nil {
		return err
	}

	if _, err := venue.DBLP(); err != nil {
		return err
	}

	logger, closer, err := logging.Setup(logging.Config{
		Dir:     viper.GetString("log-dir"),
		Level:   viper.GetString("log-level"),
		Console: os.Stdout,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("timeout"),
		UserAgent: secrets.ResolveUserAgent(loadedSecrets, httputil.DefaultUserAgent),
	}
	client := httputil.NewClient(httpCfg.Timeout)
	throttle := httputil.NewThrottle(viper.GetDuration("request-delay"))

	mapperName := viper.GetString("mapper")
	m, err := mapper.New(mapperName, mapper.Deps{
		Client:    client,
		UserAgent: httpCfg.UserAgent,
		Throttle:  throttle,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// Nothing is written to the corpus folder before the configuration checks pass.
	layout := store.NewLayout(viper.GetString("root"), target)
	if err := layout.Prepare(); err != nil {
		return err
	}

	runCfg := types.RunConfig{
		DownloadDir:     viper.GetString("downloaddir"),
		ExistingFolders: existing,
		Grouping:        grouping,
		LongName:        viper.GetBool("longname"),
		Mapper:          mapperName,
		MaxWait:         viper.GetInt("maxwait"),
		Metadata:        viper.GetString("metadata"),
		Target:          target,
	}
	sampleSize := viper.GetInt("sample")
	if sampleSize >= 0 {
		runCfg.Sample = &sampleSize
	}

	st := store.New(layout.MetadataFile(), logger)
	if _, err := st.Init(runCfg); err != nil {
		return err
	}

	met := metrics.New()
	defer func() {
		if err := met.WriteTextfile(layout.MetricsFile()); err != nil {
			logger.Warn("writing metrics", "error", err)
		}
	}()

	fetcher := dblp.NewFetcher(nil, types.FetchConfig{
		HTTPConfig: httpCfg,
		PageSize:   dblp.DefaultPageSize,
		PageDelay:  viper.GetDuration("page-delay"),
	}, logger)

	steps := []pipeline.Step{
		&dblp.Step{Fetcher: fetcher, Store: st, Venue: venue, Number: number, Grouping: grouping},
		&names.Step{Store: st, Root: viper.GetString("root"), ExistingFolders: existing, LongName: runCfg.LongName, Logger: logger},
		&bibtex.Step{Store: st, Path: layout.BibFile(), Logger: logger},
		&download.Downloader{
			Mapper: m,
			Store:  st,
			Layout: layout,
			Config: types.DownloadConfig{
				HTTPConfig:   httpCfg,
				DownloadDir:  runCfg.DownloadDir,
				RequestDelay: viper.GetDuration("request-delay"),
				MaxWait:      time.Duration(runCfg.MaxWait) * time.Second,
				Sample:       sampleSize,
			},
			Throttle: throttle,
			Browser:  download.SystemBrowser{},
			Metrics:  met,
			Logger:   logger,
		},
	}

	p := pipeline.New(st, logger)
	for _, s := range steps {
		if err := p.AddStep(met.Timed(s)); err != nil {
			return err
		}
	}

	logger.Info("starting run", "target", target, "venue", venue.Name, "mapper", mapperName, "steps", p.Steps())
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}
	slog.Info("corpus complete", "dir", layout.TargetDir(), "bibtex", layout.BibFile(), "manifest", layout.ListFile())
	return nil
}
