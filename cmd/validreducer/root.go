package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/validreducer"
	"github.com/reoring/validreducer/internal/logging"
	"github.com/reoring/validreducer/schemadoc"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	schema     string
	schemasDir string
	logLevel   string
	separator  string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "validreducer",
		Short: "Check reducer states against JSON Schema",
		Long: `validreducer runs states and action logs through a schema-checked reducer,
reporting every violation the way a wrapped reducer would at runtime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logging.New(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.schema, "schema", "", "schema file (JSON/YAML) or identifier of a schema in --schemas")
	pf.StringVar(&opts.schemasDir, "schemas", "", "directory of secondary schemas used for $ref and identifier lookup")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.separator, "separator", validreducer.DefaultSeparator, "separator between violations in error messages")

	cmd.AddCommand(newValidateCmd(opts), newReplayCmd(opts), newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolve turns the --schema and --schemas flags into a reference and options
// for validreducer.Wrap. An existing path is loaded as an inline document;
// anything else is looked up in the registry.
func (o *rootOptions) resolve() (validreducer.SchemaRef, []validreducer.Option, error) {
	if o.schema == "" {
		return validreducer.SchemaRef{}, nil, fmt.Errorf("--schema is required")
	}

	var schemas map[string]schemadoc.Document
	if o.schemasDir != "" {
		var err error
		schemas, err = schemadoc.LoadDir(o.schemasDir)
		if err != nil {
			return validreducer.SchemaRef{}, nil, fmt.Errorf("load schemas: %w", err)
		}
		o.logger.Debug("loaded registry", "dir", o.schemasDir, "schemas", len(schemas))
	}

	ref := validreducer.Named(o.schema)
	if st, err := os.Stat(o.schema); err == nil && !st.IsDir() {
		doc, err := schemadoc.LoadFile(o.schema)
		if err != nil {
			return validreducer.SchemaRef{}, nil, fmt.Errorf("load schema: %w", err)
		}
		ref = validreducer.Inline(doc)
	}

	return ref, []validreducer.Option{
		validreducer.WithSchemas(schemas),
		validreducer.WithSeparator(o.separator),
		validreducer.WithLogger(o.logger),
	}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of validreducer",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "validreducer version %s\n", version)
		},
	}
}
