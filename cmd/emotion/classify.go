package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	classifier "github.com/FrenchMajesty/emotion-classifier"
)

var (
	classifyJSON  bool
	classifyLines bool
)

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print results as JSON")
	classifyCmd.Flags().BoolVar(&classifyLines, "lines", false, "classify each line of stdin separately")
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text given as arguments or on stdin",
	Example: `  emotion classify "I am so happy today!"
  echo "what a dreadful day" | emotion classify --json
  emotion classify --lines < messages.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clf, err := newClassifier(cmd.Context(), appCfg, slog.Default())
		if err != nil {
			return err
		}
		defer clf.Close()

		out := cmd.OutOrStdout()
		p := newPrinter(useColor(colorFlag, os.Stdout))

		if classifyLines {
			if len(args) > 0 {
				return errors.New("--lines reads stdin and takes no arguments")
			}
			texts, err := readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
			results, err := clf.ClassifyBatch(cmd.Context(), texts)
			if err != nil {
				return err
			}
			for i, r := range results {
				if classifyJSON {
					if err := writeJSONLine(out, r); err != nil {
						return err
					}
					continue
				}
				p.summary(out, texts[i], r)
			}
			return nil
		}

		text, err := readText(args, cmd.InOrStdin(), stdinIsPipe())
		if err != nil {
			return err
		}

		result := clf.Classify(cmd.Context(), text)
		if classifyJSON {
			if err := writeJSONLine(out, result); err != nil {
				return err
			}
		} else {
			p.result(out, result)
		}

		switch result.Outcome {
		case classifier.OutcomeInvalidInput, classifier.OutcomeModelUnavailable:
			return result.Err()
		}
		return nil
	},
}

// readText joins args, or reads all of in when there are none.
func readText(args []string, in io.Reader, piped bool) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if !piped {
		return "", errors.New("no text given: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// readLines returns the non-blank lines of in.
func readLines(in io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return lines, nil
}

func stdinIsPipe() bool {
	return !isTerminal(os.Stdin)
}

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printer renders results for humans.
type printer struct {
	label *color.Color
	warn  *color.Color
	fail  *color.Color
	dim   *color.Color
}

func newPrinter(colored bool) *printer {
	p := &printer{
		label: color.New(color.FgCyan, color.Bold),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		dim:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.label, p.warn, p.fail, p.dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

const barWidth = 24

func (p *printer) result(w io.Writer, r *classifier.Result) {
	switch r.Outcome {
	case classifier.OutcomeInvalidInput:
		p.fail.Fprintf(w, "invalid input: %s\n", r.Reason)
		return
	case classifier.OutcomeModelUnavailable:
		p.warn.Fprintf(w, "model unavailable: %s\n", r.Reason)
		fmt.Fprintf(w, "%s %s\n", p.label.Sprint(r.Label), r.Glyph)
		return
	case classifier.OutcomeDistributionInvalid:
		fmt.Fprintf(w, "%s %s\n", p.label.Sprint(r.Label), r.Glyph)
		p.warn.Fprintf(w, "probability distribution unavailable: %s\n", r.Reason)
		return
	}

	fmt.Fprintf(w, "%s %s  %.1f%%\n", p.label.Sprint(r.Label), r.Glyph, *r.Confidence*100)

	width := 0
	for _, e := range r.Distribution {
		width = max(width, len(e.Label))
	}
	for _, e := range r.Distribution.Sorted() {
		filled := int(e.Probability*barWidth + 0.5)
		bar := strings.Repeat("█", filled) + p.dim.Sprint(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(w, "  %-*s %s %5.1f%%\n", width, e.Label, bar, e.Probability*100)
	}
}

func (p *printer) summary(w io.Writer, text string, r *classifier.Result) {
	switch r.Outcome {
	case classifier.OutcomeOK:
		fmt.Fprintf(w, "%s %s %5.1f%%  %s\n", p.label.Sprint(r.Label), r.Glyph, *r.Confidence*100, text)
	case classifier.OutcomeDistributionInvalid:
		fmt.Fprintf(w, "%s %s   n/a  %s\n", p.label.Sprint(r.Label), r.Glyph, text)
	default:
		fmt.Fprintf(w, "%s  %s\n", p.fail.Sprint(r.Outcome), text)
	}
}
