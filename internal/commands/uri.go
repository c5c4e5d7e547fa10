package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gaborage/zephyr/uri"
)

// NewURICommand creates the uri command
func NewURICommand(global *GlobalOptions) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "uri [SEGMENT...]",
		Short: "Print the URI a request would target",
		Long: `Composes a URI from the configured root, the given path segments and any
query parameters, without sending anything.`,
		Example: `  zephyr uri users 1 --root http://api.example.com
  zephyr uri search -p q="a b" -p tag=x -p tag=y`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runURI(cmd.OutOrStdout(), global, args, params)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter as key=value")

	return cmd
}

func runURI(w io.Writer, global *GlobalOptions, segments, params []string) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	root, err := uri.ParseRoot(cfg.Client.Root)
	if err != nil {
		return err
	}

	spec, err := parsePathSpec(segments, params)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, root.Compose(spec))
	return err
}
