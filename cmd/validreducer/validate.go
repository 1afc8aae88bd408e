package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/validreducer"
	"github.com/reoring/validreducer/schemadoc"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <state-file>...",
		Short: "Check state documents against the schema",
		Long: `Each JSON or YAML file is fed to a reducer that returns it as the next
state; the file passes when the wrapped reducer accepts it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}
}

// overwrite returns the action as the next state.
func overwrite(_ any, action any) any { return action }

func runValidate(cmd *cobra.Command, opts *rootOptions, files []string) error {
	ref, wopts, err := opts.resolve()
	if err != nil {
		return err
	}
	reducer, err := validreducer.Wrap(validreducer.Pure(overwrite), ref, wopts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range files {
		state, err := schemadoc.LoadValue(path)
		if err != nil {
			return err
		}
		if _, err := reducer(nil, state); err != nil {
			failed++
			opts.logger.Debug("state rejected", "file", path, "error", err)
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d states failed validation", failed, len(files))
	}
	return nil
}
