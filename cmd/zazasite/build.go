package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zazasite/internal/build"
	"zazasite/internal/logger"
)

var buildForce bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Collects blog posts into posts.json and the index snapshot",
	Long: `The build command reads every markdown post under build.content_dir,
normalizes its frontmatter, writes build.output and refreshes the bbolt
index. Nothing is rewritten when the content snapshot is unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := &build.Builder{
			Cfg:   appConfig,
			Log:   logger.Component("build"),
			Force: buildForce,
		}
		res, err := b.Run(cmd.Context())
		if err != nil {
			return err
		}
		if res.Unchanged {
			fmt.Printf("processed: %d  skipped: %d  unchanged (%s)\n", res.Posts, res.Skipped, res.Duration.Round(time.Millisecond))
			return nil
		}
		fmt.Printf("processed: %d  skipped: %d  warnings: %d  missing images: %d  -> %s (%s)\n",
			res.Posts, res.Skipped, len(res.Warnings), len(res.MissingImages), appConfig.Build.Output, res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "rewrite outputs even when nothing changed")
	rootCmd.AddCommand(buildCmd)
}
