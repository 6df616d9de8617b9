package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	RunID string `json:"run_id"`
	Reads int    `json:"reads"`
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	env, err := New(TypeReductionCompleted, "run-1", ts, payload{RunID: "run-1", Reads: 42})
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T11:00:00Z", env.TS)

	b, err := json.Marshal(env)
	require.NoError(t, err)

	opened, err := Open(b)
	require.NoError(t, err)
	require.Equal(t, TypeReductionCompleted, opened.Type)
	require.Equal(t, 1, opened.Version)
	require.Equal(t, "run-1", opened.ID)

	var got payload
	require.NoError(t, opened.Decode(TypeReductionCompleted, &got))
	require.Equal(t, payload{RunID: "run-1", Reads: 42}, got)

	require.ErrorContains(t, opened.Decode("other", &got), "unexpected message type")
}

func TestOpen_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Open([]byte("{not json"))
	require.ErrorContains(t, err, "invalid envelope")
}

func TestNew_UnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := New(TypeReductionCompleted, "x", time.Now(), make(chan int))
	require.Error(t, err)
}
