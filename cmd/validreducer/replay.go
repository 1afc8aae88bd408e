package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/validreducer"
	"github.com/reoring/validreducer/internal/jsontree"
	"github.com/reoring/validreducer/schemadoc"
)

// initAction is dispatched once before the log, the way state containers probe
// a reducer for its initial state.
const initAction = "@@validreducer/INIT"

type action struct {
	Type    string
	Payload any
}

type replayOptions struct {
	initial string
}

func newReplayCmd(opts *rootOptions) *cobra.Command {
	ropts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay <actions.jsonl>",
		Short: "Fold an action log through a schema-checked merge reducer",
		Long: `Each line of the log is a JSON object {"type": ..., "payload": {...}}.
The payload's keys overwrite the state's keys. Every resulting state is
checked; the replay stops at the first rejected transition. The final state
is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, ropts, args[0])
		},
	}
	cmd.Flags().StringVar(&ropts.initial, "initial", "", "initial state file (JSON/YAML object)")
	return cmd
}

// merge shallow-merges an object payload into the state.
func merge(state map[string]any, a action) (map[string]any, error) {
	if state == nil {
		state = map[string]any{}
	}
	if a.Payload == nil {
		return state, nil
	}
	patch, ok := a.Payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("action %q: payload must be an object, got %T", a.Type, a.Payload)
	}
	next := make(map[string]any, len(state)+len(patch))
	for k, v := range state {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	return next, nil
}

func runReplay(cmd *cobra.Command, opts *rootOptions, ropts *replayOptions, logPath string) error {
	ref, wopts, err := opts.resolve()
	if err != nil {
		return err
	}
	reducer, err := validreducer.Wrap(merge, ref, wopts...)
	if err != nil {
		return err
	}

	var state map[string]any
	if ropts.initial != "" {
		state, err = schemadoc.LoadFile(ropts.initial)
		if err != nil {
			return fmt.Errorf("load initial state: %w", err)
		}
	}
	state, err = reducer(state, action{Type: initAction})
	if err != nil {
		return fmt.Errorf("initial state rejected: %w", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line, applied := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		a, err := parseAction(text)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", logPath, line, err)
		}
		next, err := reducer(state, a)
		if err != nil {
			return fmt.Errorf("%s:%d: action %q rejected: %w", logPath, line, a.Type, err)
		}
		state = next
		applied++
		opts.logger.Debug("action applied", "line", line, "type", a.Type)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", logPath, err)
	}

	opts.logger.Info("replay finished", "actions", applied)
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func parseAction(text string) (action, error) {
	v, err := jsontree.Decode([]byte(text))
	if err != nil {
		return action{}, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return action{}, fmt.Errorf("action must be a JSON object")
	}
	typ, _ := m["type"].(string)
	if typ == "" {
		return action{}, fmt.Errorf("action has no type")
	}
	return action{Type: typ, Payload: m["payload"]}, nil
}
