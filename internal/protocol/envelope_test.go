// file: internal/protocol/envelope_test.go
package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_NullResultIsExplicit(t *testing.T) {
	b, err := json.Marshal(NewResult(1, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"protocol":"tywrap/1","result":null}`, string(b))
}

func TestResponse_SuccessCarriesResult(t *testing.T) {
	b, err := json.Marshal(NewResult(2, map[string]any{"a": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"protocol":"tywrap/1","result":{"a":1}}`, string(b))
}

func TestResponse_ErrorOmitsResult(t *testing.T) {
	b, err := json.Marshal(NewError(3, ErrorBody{Type: "ProtocolError", Message: "bad envelope", Code: -32600}))
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"result"`)
	assert.Contains(t, string(b), `"error"`)
}
