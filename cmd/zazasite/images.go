package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zazasite/internal/images"
	"zazasite/internal/ingest"
	"zazasite/internal/logger"
)

var imagesStrict bool

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Checks that every local cover image exists under the public dir",
	Long: `The images command lists posts whose local cover image is missing from
build.public_dir. Without --strict missing images only produce warnings and
the site falls back to the default cover. With --strict the command exits 1
when anything is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Component("images")
		items, _, err := ingest.Ingest(cmd.Context(), ingest.Options{
			SourceDir:  appConfig.Build.ContentDir,
			Normalizer: ingest.NewNormalizer(appConfig.Site.DefaultAuthor),
		})
		if err != nil {
			return err
		}

		rep := images.Check(items, appConfig.Build.PublicDir)
		for _, m := range rep.Missing {
			log.Warn().Str("slug", m.Slug).Str("image", m.Image).Str("path", m.Path).Msg("missing image")
		}
		fmt.Printf("checked: %d  remote: %d  missing: %d\n", rep.Checked, rep.Remote, len(rep.Missing))

		if rep.OK() {
			return nil
		}
		if imagesStrict {
			return exitError{code: 1}
		}
		fmt.Println("missing images will use the default cover")
		return nil
	},
}

func init() {
	imagesCmd.Flags().BoolVar(&imagesStrict, "strict", false, "exit 1 when an image is missing")
	rootCmd.AddCommand(imagesCmd)
}
