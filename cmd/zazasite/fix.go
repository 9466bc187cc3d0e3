package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zazasite/internal/fixer"
	"zazasite/internal/logger"
)

var fixDryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix-frontmatter [dir]",
	Short: "Rewrites legacy frontmatter fields in place",
	Long: `The fix-frontmatter command rewrites legacy frontmatter of every post
under the given directory (default build.content_dir) into the current field
names and values. Running it twice changes nothing the second time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := appConfig.Build.ContentDir
		if len(args) == 1 {
			root = args[0]
		}
		f := &fixer.Fixer{DryRun: fixDryRun, Log: logger.Component("fixer")}
		rep, err := f.Run(root)
		if err != nil {
			return err
		}
		for _, c := range rep.Changed {
			fmt.Printf("%s\n", c.Path)
			for _, ch := range c.Changes {
				fmt.Printf("  - %s\n", ch)
			}
		}
		verb := "fixed"
		if fixDryRun {
			verb = "would fix"
		}
		fmt.Printf("scanned: %d  %s: %d  failed: %d\n", rep.Scanned, verb, len(rep.Changed), rep.Failed)
		return nil
	},
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "report changes without writing files")
	rootCmd.AddCommand(fixCmd)
}
