package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version needs no configuration
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := versionPayload{
			Tool:      "emotion",
			Version:   Version,
			Commit:    Commit,
			GoVersion: runtime.Version(),
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "json":
			return writeJSONLine(out, payload)
		case "pretty", "":
			fmt.Fprintf(out, "%s %s", payload.Tool, payload.Version)
			if payload.Commit != "" {
				fmt.Fprintf(out, " (%s)", payload.Commit)
			}
			fmt.Fprintf(out, " %s\n", payload.GoVersion)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want pretty or json)", versionFormat)
		}
	},
}
