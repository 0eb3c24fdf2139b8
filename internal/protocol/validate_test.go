// file: internal/protocol/validate_test.go
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WellFormedCall(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":2,"method":"call","params":{"module":"M","functionName":"echo"}}`)
	v, id, err := Validate(line)
	require.NoError(t, err)
	assert.EqualValues(t, 2, id)
	assert.Equal(t, "call", v.Method)
	assert.EqualValues(t, 2, v.ID)
}

func TestValidate_MetaWithEmptyParams(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":1,"method":"meta","params":{}}`)
	v, _, err := Validate(line)
	require.NoError(t, err)
	assert.Equal(t, "meta", v.Method)
}

func TestValidate_MissingParamsIsAllowed(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":1,"method":"meta"}`)
	_, _, err := Validate(line)
	require.NoError(t, err)
}

func TestValidate_MalformedJSON(t *testing.T) {
	_, id, err := Validate([]byte(`{not json`))
	require.Error(t, err)
	assert.EqualValues(t, UnrecoverableID, id)
}

func TestValidate_NonObjectTopLevel(t *testing.T) {
	_, id, err := Validate([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.EqualValues(t, UnrecoverableID, id)
}

func TestRecoverID_WellFormedLine(t *testing.T) {
	assert.EqualValues(t, 42, RecoverID([]byte(`{"protocol":"tywrap/1","id":42,"method":"meta"}`)))
}

func TestRecoverID_MalformedLine(t *testing.T) {
	assert.EqualValues(t, UnrecoverableID, RecoverID([]byte(`{broken`)))
}

func TestRecoverID_NegativeID(t *testing.T) {
	assert.EqualValues(t, UnrecoverableID, RecoverID([]byte(`{"id":-3}`)))
}

func TestValidate_MismatchedProtocolLiteral(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/2","id":1,"method":"meta"}`)
	_, _, err := Validate(line)
	require.Error(t, err)
}

func TestValidate_MissingID(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","method":"meta"}`)
	_, id, err := Validate(line)
	require.Error(t, err)
	assert.EqualValues(t, UnrecoverableID, id)
}

func TestValidate_NegativeID(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":-1,"method":"meta"}`)
	_, _, err := Validate(line)
	require.Error(t, err)
}

func TestValidate_NonIntegerID(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":1.5,"method":"meta"}`)
	_, _, err := Validate(line)
	require.Error(t, err)
}

func TestValidate_MissingMethod(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":1}`)
	_, id, err := Validate(line)
	require.Error(t, err)
	assert.EqualValues(t, 1, id, "id should still be recoverable even though method is missing")
}

func TestValidate_NonObjectParams(t *testing.T) {
	line := []byte(`{"protocol":"tywrap/1","id":1,"method":"meta","params":[1,2]}`)
	_, _, err := Validate(line)
	require.Error(t, err)
}
