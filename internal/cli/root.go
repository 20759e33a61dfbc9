package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ace0731/Image-Converter/config"
)

type app struct {
	cfg     *config.Config
	logFile io.Closer
}

// NewRootCmd builds the imgconv command tree. Configuration is loaded before
// any subcommand runs.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	var configFile string

	cmd := &cobra.Command{
		Use:           "imgconv",
		Short:         "Shrink images to Full HD and convert them to WebP, JPEG or PNG",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			cfg, err := config.ParseConfig(v)
			if err != nil {
				return err
			}

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Log.Level = "debug"
			}
			a.cfg = cfg
			a.logFile, err = setupLogging(&cfg.Log)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logFile != nil {
				return a.logFile.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(newConvertCmd(a), newServeCmd(a))

	return cmd
}

func setupLogging(cfg *config.LogConfig) (io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(new(logrus.JSONFormatter))
	}

	if cfg.File == "" {
		logrus.SetOutput(os.Stderr)
		return nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	logrus.SetOutput(f)
	return f, nil
}
