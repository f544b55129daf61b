// Package cli implements the sitegen command line client.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SITEGEN"

// NewRootCmd builds the sitegen command tree. Flags fall back to
// SITEGEN_* environment variables.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "sitegen",
		Short: "Generate onboarding sites from workspace artifacts",
		Long: `sitegen talks to the site generation service.

Example usage:
  sitegen candidates "new backend engineers"   # Show candidates per block slot
  sitegen generate "new backend engineers"     # Generate and store a site
  sitegen generate --async --wait "sales"      # Queue a job and wait for it
  sitegen job <job-id>                         # Show job status`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:9020", "site generation service URL")
	flags.String("user", "", "user id sent as X-User-Id")
	flags.String("world", "", "world id sent as X-World-Id")
	flags.Duration("timeout", 3*time.Minute, "request timeout")
	flags.Bool("json", false, "output as JSON")
	flags.Bool("no-color", false, "disable colored output")
	for _, name := range []string{"server", "user", "world", "timeout", "json", "no-color"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newCandidatesCmd(v),
		newGenerateCmd(v),
		newJobCmd(v),
	)
	return root
}

func clientFrom(v *viper.Viper) (*Client, error) {
	user := v.GetString("user")
	if user == "" {
		return nil, fmt.Errorf("user id is required (--user or %s_USER)", envPrefix)
	}
	return NewClient(v.GetString("server"), user, v.GetString("world"), v.GetDuration("timeout")), nil
}

func writeJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
