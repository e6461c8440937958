package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainBuildStreamSuccess(t *testing.T) {
	stream := strings.Join([]string{
		`{"stream":"Step 1/10 : FROM python:3.11-slim"}`,
		`{"stream":" ---> abcdef012345"}`,
		`{"aux":{"ID":"sha256:feedfacecafe"}}`,
		`{"stream":"Successfully built feedfacecafe"}`,
	}, "\n")

	id, err := drainBuildStream(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, "sha256:feedfacecafe", id)
}

// An error frame anywhere in the stream fails the whole build; a failed
// dependency install must never produce a usable image ID.
func TestDrainBuildStreamErrorFrame(t *testing.T) {
	stream := strings.Join([]string{
		`{"stream":"Step 4/10 : RUN pip install --no-cache-dir -r requirements.txt"}`,
		`{"errorDetail":{"message":"The command '/bin/sh -c pip install --no-cache-dir -r requirements.txt' returned a non-zero code: 1"},"error":"The command '/bin/sh -c pip install --no-cache-dir -r requirements.txt' returned a non-zero code: 1"}`,
	}, "\n")

	id, err := drainBuildStream(strings.NewReader(stream))
	require.Error(t, err)
	assert.Empty(t, id)
	assert.Contains(t, err.Error(), "non-zero code: 1")
}

func TestDrainBuildStreamGarbage(t *testing.T) {
	_, err := drainBuildStream(strings.NewReader("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read build output")
}

func TestDrainBuildStreamNoAuxFrame(t *testing.T) {
	id, err := drainBuildStream(strings.NewReader(`{"stream":"Successfully tagged aster-bot:latest"}`))
	require.NoError(t, err)
	assert.Empty(t, id)
}
