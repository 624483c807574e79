package common

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestKeyPath(t *testing.T) {
	assert.Equal(t, "/api/db/age", KeyPath("db", "age"))
	assert.Equal(t, "/api/db/a%2Fb", KeyPath("db", "a/b"))
	assert.Equal(t, "/api/db/hello%20world", KeyPath("db", "hello world"))
	assert.Equal(t, "/api/db/%3F%23", KeyPath("db", "?#"))
}

func TestResultResponseOmitsError(t *testing.T) {
	out, err := json.Marshal(ResultResponse{Result: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":true}`, string(out))

	out, err = json.Marshal(ResultResponse{Error: &ErrorBody{Code: -500, Message: "internal error"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":false,"error":{"code":-500,"message":"internal error"}}`, string(out))
}
