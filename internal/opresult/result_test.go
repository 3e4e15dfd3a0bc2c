package opresult

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSuccess(t *testing.T) {
	b, err := json.Marshal(Success("rebase", "r3"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"rebaseNeeded":true,"result":"success","sha":"r3"}`, string(b))
}

func TestMarshalSkipped(t *testing.T) {
	b, err := json.Marshal(Skipped("squash"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"squashNeeded":false,"result":"skipped"}`, string(b))
}

func TestMarshalFailed(t *testing.T) {
	b, err := json.Marshal(Failed("cherryPick", errors.New("creating commit failed")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cherryPickNeeded":true,"result":"failed","error":"creating commit failed"}`, string(b))
}
