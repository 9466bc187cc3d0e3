package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zazasite/internal/domain/config"
	domainerr "zazasite/internal/domain/errors"
	"zazasite/internal/logger"
)

var cfgFile string
var appConfig config.Config

// exitError carries a process exit code up to Execute.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "zazasite",
	Short: "Content pipeline for the Zaza blog, resources and trends",
	Long: `zazasite turns the markdown content of the Zaza site into posts.json and
printable resources, and serves the posts API with the trend ingestion
endpoints.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := 1
	var ee exitError
	if errors.As(err, &ee) {
		code = ee.code
		if ee.err == nil {
			os.Exit(code)
		}
	}
	logger.Get().Error().Err(err).Msg("zazasite failed")
	os.Exit(code)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./site.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human readable console logs")
}

func initializeConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadWith(cfgFile, func(v *viper.Viper) error {
		return bindFlags(v, cmd, map[string]string{
			"log.level":  "log-level",
			"log.pretty": "pretty",
		})
	})
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
		Pretty: cfg.Log.Pretty,
	})
	if err != nil {
		var ve domainerr.ValidationError
		if errors.As(err, &ve) {
			return exitError{code: 2, err: fmt.Errorf("invalid config: %w", err)}
		}
		return err
	}
	appConfig = cfg
	return nil
}

// bindFlags binds the named flags that exist on cmd to config keys. Flags
// left at their zero value do not override the file.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
