package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/validreducer"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	t.Run("Registry schema by identifier", func(t *testing.T) {
		out, err := run(t, "validate",
			"--schemas", "testdata/schemas", "--schema", "foo",
			"testdata/states/foo_valid.json")
		require.NoError(t, err)
		assert.Contains(t, out, "ok   testdata/states/foo_valid.json")
	})

	t.Run("Reports every failing file", func(t *testing.T) {
		out, err := run(t, "validate",
			"--schemas", "testdata/schemas", "--schema", "foo",
			"testdata/states/foo_valid.json", "testdata/states/foo_invalid.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 states failed validation")
		assert.Contains(t, out, "ok   testdata/states/foo_valid.json")
		assert.Contains(t, out, "FAIL testdata/states/foo_invalid.json")
		assert.Contains(t, out, "foo")
		assert.Contains(t, out, "bar")
	})

	t.Run("Schema file with references into the registry", func(t *testing.T) {
		out, err := run(t, "validate",
			"--schemas", "testdata/schemas", "--schema", "testdata/schemas/foobar.json",
			"testdata/states/foobar.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "ok")
	})

	t.Run("Missing references fail before any state is read", func(t *testing.T) {
		_, err := run(t, "validate",
			"--schema", "testdata/schemas/foobar.json",
			"testdata/states/foobar.yaml")
		require.Error(t, err)
		assert.ErrorIs(t, err, validreducer.ErrUnresolvedRef)
	})

	t.Run("Unknown identifier", func(t *testing.T) {
		_, err := run(t, "validate",
			"--schemas", "testdata/schemas", "--schema", "nope",
			"testdata/states/foo_valid.json")
		assert.ErrorIs(t, err, validreducer.ErrSchemaNotFound)
	})

	t.Run("Schema flag is required", func(t *testing.T) {
		_, err := run(t, "validate", "testdata/states/foo_valid.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--schema is required")
	})
}

func TestReplay(t *testing.T) {
	t.Run("Valid log prints the final state", func(t *testing.T) {
		out, err := run(t, "replay",
			"--schema", "testdata/app_state.yaml",
			"--initial", "testdata/initial.json",
			"testdata/actions.jsonl")
		require.NoError(t, err)
		assert.JSONEq(t, `{"foo": "hello", "bar": 4}`, out)
		golden(t).Assert(t, "replay_final_state", []byte(out))
	})

	t.Run("Stops at the first rejected transition", func(t *testing.T) {
		out, err := run(t, "replay",
			"--schema", "testdata/app_state.yaml",
			"--initial", "testdata/initial.json",
			"testdata/bad_actions.jsonl")
		require.Error(t, err)
		assert.Empty(t, out)
		assert.Contains(t, err.Error(), "bad_actions.jsonl:2")
		assert.Contains(t, err.Error(), `"BAR"`)
		_, ok := validreducer.AsValidationError(err)
		assert.True(t, ok)
	})

	t.Run("Empty initial state is rejected by the init action", func(t *testing.T) {
		_, err := run(t, "replay", "--schema", "testdata/app_state.yaml", "testdata/actions.jsonl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial state rejected")
	})

	t.Run("Malformed log line", func(t *testing.T) {
		dir := t.TempDir()
		log := filepath.Join(dir, "log.jsonl")
		require.NoError(t, os.WriteFile(log, []byte("{\"payload\": {}}\n"), 0o644))
		_, err := run(t, "replay",
			"--schema", "testdata/app_state.yaml",
			"--initial", "testdata/initial.json",
			log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.jsonl:1")
	})
}

func TestMerge(t *testing.T) {
	t.Run("Payload keys overwrite state keys", func(t *testing.T) {
		state := map[string]any{"foo": "a", "bar": 1}
		next, err := merge(state, action{Type: "FOO", Payload: map[string]any{"foo": "b"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"foo": "b", "bar": 1}, next)
		assert.Equal(t, "a", state["foo"], "input state must not be mutated")
	})

	t.Run("Nil state starts empty", func(t *testing.T) {
		next, err := merge(nil, action{Type: initAction})
		require.NoError(t, err)
		assert.Empty(t, next)
	})

	t.Run("Non-object payload", func(t *testing.T) {
		_, err := merge(nil, action{Type: "X", Payload: 3})
		assert.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	golden(t).Assert(t, "version", []byte(out))
}
