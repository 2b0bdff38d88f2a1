package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FrenchMajesty/emotion-classifier/pkg/emoji"
	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
)

var labelsAll bool

func init() {
	labelsCmd.Flags().BoolVar(&labelsAll, "all", false, "list every label with a glyph instead of the model's classes")
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the labels the classifier can produce",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if labelsAll {
			for _, l := range emoji.Labels() {
				fmt.Fprintf(out, "%-10s %s\n", l, l.Glyph())
			}
			return nil
		}

		sources, err := loadOptions(cmd.Context(), appCfg, slog.Default())
		if err != nil {
			return err
		}
		h, err := model.Load(cmd.Context(), appCfg.ModelPath, sources...)
		if err != nil {
			return errors.Join(err, errors.New("use --all to list the built-in labels"))
		}
		for _, label := range h.Classes() {
			fmt.Fprintf(out, "%-10s %s\n", label, emoji.Annotate(label))
		}
		return nil
	},
}
