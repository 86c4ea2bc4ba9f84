package cmd

import (
	"io"
	"log"
	"os"

	"github.com/josephlewis42/hsh/core/config"
	"github.com/josephlewis42/hsh/core/shell"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgPath     string
	commandLine string
)

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	return config.Load(cfgPath, log.New(cmd.ErrOrStderr(), "", 0))
}

// newEngineLogger creates the JSON lines engine log configured by app_log.
func newEngineLogger(cfg *config.Configuration) (*zap.Logger, io.Closer, error) {
	if cfg.AppLog == "" {
		return zap.NewNop(), closerFunc(func() error { return nil }), nil
	}

	fd, err := cfg.OpenAppLog()
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(fd), zap.DebugLevel)

	logger := zap.New(core).With(zap.Int("pid", os.Getpid()))
	return logger, closerFunc(func() error {
		logger.Sync()
		return fd.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hsh",
	Short: "A small interactive shell",
	Long: `hsh reads command lines and runs them as pipelines of processes.

Lines are recorded to a history file and can be recalled with the arrow keys.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engineLog, logCloser, err := newEngineLogger(configuration)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		session := shell.NewSession(configuration, shell.SessionOptions{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Logger: engineLog,
		})

		if cmd.Flags().Changed("command") {
			stop := session.Router.Install()
			defer stop()

			session.RunLine(commandLine)
			return nil
		}

		if code := session.Run(); code != 0 {
			logCloser.Close()
			os.Exit(code)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit")
}
