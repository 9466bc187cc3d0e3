package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zazasite/internal/logger"
	"zazasite/internal/render"
	"zazasite/internal/resources"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Renders downloadable resources to HTML and PDF",
	Long: `The resources command turns every markdown file under
resources.source_dir into a styled HTML page and a PDF printed by headless
Chrome, then rewrites the resources manifest. When resources.publish.bucket
is set the outputs are uploaded to the bucket as well.`,
	RunE: runResources,
}

func runResources(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rc := appConfig.Resources
	log := logger.Component("resources")

	if st, err := os.Stat(rc.SourceDir); err != nil || !st.IsDir() {
		return exitError{code: 1, err: fmt.Errorf("%w: %s", resources.ErrSourceMissing, rc.SourceDir)}
	}

	docs, err := render.NewDocumentRenderer(rc.Stylesheet)
	if err != nil {
		return fmt.Errorf("load stylesheet: %w", err)
	}

	gen := &resources.Generator{
		Opt: resources.Options{
			SourceDir:  rc.SourceDir,
			OutDir:     rc.OutDir,
			PublicBase: rc.PublicBase,
			Company:    appConfig.Site.Company,
			Workers:    rc.Workers,
		},
		Markdown:  render.NewMarkdownRenderer(),
		Documents: docs,
		Log:       log,
	}

	if rc.Publish.Bucket != "" {
		pub, err := resources.NewS3Publisher(ctx, rc.Publish, appConfig.Secrets)
		if err != nil {
			return err
		}
		gen.Publisher = pub
	}

	pdf, err := resources.NewChromePDF(ctx, resources.ChromeOptions{
		ExecPath: rc.ChromePath,
		Company:  appConfig.Site.Company,
		Timeout:  rc.PDFTimeout,
	})
	if err != nil {
		return err
	}
	defer pdf.Close()
	gen.PDF = pdf

	rep, err := gen.Run(ctx)
	if rep != nil {
		fmt.Printf("processed: %d  skipped: %d  failed: %d", rep.Processed, rep.Skipped, rep.Failed)
		if gen.Publisher != nil {
			fmt.Printf("  published: %d", rep.Published)
		}
		fmt.Println()
	}
	if err != nil {
		return err
	}

	missing, err := resources.VerifyManifest(rc.OutDir, rc.PublicBase, rep.Entries)
	if err != nil {
		return fmt.Errorf("verify manifest: %w", err)
	}
	for _, m := range missing {
		log.Error().Str("path", m).Msg("manifest entry has no file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d manifest files missing", len(missing))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}
