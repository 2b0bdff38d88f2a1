package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
)

var convertFormat string

func init() {
	modelConvertCmd.Flags().StringVar(&convertFormat, "format", "", "output format (json|msgpack); guessed from the output extension when empty")

	modelCmd.AddCommand(modelInspectCmd)
	modelCmd.AddCommand(modelConvertCmd)
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect and convert model artifacts",
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Describe a model artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := args[0]
		sources, err := loadOptions(cmd.Context(), appCfg, slog.Default())
		if err != nil {
			return err
		}
		data, err := model.Fetch(cmd.Context(), location, sources...)
		if err != nil {
			return err
		}
		format, _ := model.FormatFor(location)
		m, err := model.Decode(data, format)
		if err != nil {
			return fmt.Errorf("%s: %w", location, err)
		}

		sum := sha256.Sum256(data)
		describe(cmd.OutOrStdout(), location, hex.EncodeToString(sum[:]), len(data), m)
		return nil
	},
}

var modelConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a model artifact, e.g. from JSON to msgpack",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]

		format := model.Format(convertFormat)
		if format == "" {
			var ok bool
			if format, ok = model.FormatFor(out); !ok {
				return fmt.Errorf("cannot tell the format of %s; pass --format", out)
			}
		}

		sources, err := loadOptions(cmd.Context(), appCfg, slog.Default())
		if err != nil {
			return err
		}
		data, err := model.Fetch(cmd.Context(), in, sources...)
		if err != nil {
			return err
		}
		inFormat, _ := model.FormatFor(in)
		m, err := model.Decode(data, inFormat)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		if err := model.Encode(f, m, format); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		slog.Info("model converted", "from", in, "to", out, "format", format)
		return nil
	},
}

func describe(w io.Writer, location, fingerprint string, size int, m *model.LinearModel) {
	fmt.Fprintf(w, "source:      %s\n", location)
	fmt.Fprintf(w, "size:        %d bytes\n", size)
	fmt.Fprintf(w, "fingerprint: %s\n", fingerprint)
	fmt.Fprintf(w, "version:     %d\n", m.Version)
	fmt.Fprintf(w, "classes:     %d\n", len(m.Labels))
	for i, label := range m.Labels {
		fmt.Fprintf(w, "  %2d %s\n", i, label)
	}

	if n := len(m.Features.Vocabulary); n > 0 {
		fmt.Fprintf(w, "features:    vocabulary (%d terms)\n", n)
	} else {
		fmt.Fprintf(w, "features:    hashed (%d columns)\n", m.Features.HashDim)
	}
	ngram := max(m.Features.NGramMax, 1)
	fmt.Fprintf(w, "ngram max:   %d\n", ngram)
	fmt.Fprintf(w, "normalize:   %t\n", m.Features.Normalize)
}
