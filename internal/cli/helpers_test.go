package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it wrote to
// stdout. The .env lookup is disabled so the developer's file cannot leak in.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"FOODSAVER_DB", "FOODSAVER_HTTP_ADDR", "FOODSAVER_UPDATE_INTERVAL", "FOODSAVER_SEED"} {
		t.Setenv(key, "")
	}

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// decodeData unmarshals the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, raw string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), "output: %s", raw)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
