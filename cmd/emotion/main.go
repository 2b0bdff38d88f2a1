package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/FrenchMajesty/emotion-classifier/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "emotion",
	Short: "Emotion text classifier",
	Long: `emotion assigns one of a fixed set of emotion labels to a piece of text,
together with a confidence and the per-class probability distribution.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if modelFlag != "" {
			cfg.ModelPath = modelFlag
		}
		if logLevelFlag != "" {
			if err := cfg.LogLevel.UnmarshalText([]byte(logLevelFlag)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
		}
		appCfg = cfg
		slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
		return nil
	},
}

var (
	appCfg       *config.Cfg
	modelFlag    string
	logLevelFlag string
	colorFlag    string
)

func main() {
	rootCmd.Version = Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model artifact path or s3://bucket/key (overrides EMOTION_MODEL_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// useColor resolves --color against whether f is a terminal
func useColor(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return isTerminal(f)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
