package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/ValentinKolb/kvapp/rpc/transport"
	"net/http"
)

// Error is a failed request as reported by the server
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("kvapp error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsStatus reports whether err is an *Error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// decodeError turns a non-2xx response into an *Error. Both the error
// envelope and the failed result body carry an error object.
func decodeError(resp *transport.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode, Code: -resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var envelope struct {
		Error *common.ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
