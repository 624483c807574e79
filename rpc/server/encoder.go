package server

import (
	"bytes"
	"encoding/json"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"net/http"
	"strconv"
)

// --------------------------------------------------------------------------
// Writers
// --------------------------------------------------------------------------

// writeJSON encodes data into a buffer first so an encoding failure can still
// be answered with a 500 before any header is sent.
func writeJSON(w http.ResponseWriter, status int, data any) int {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		Logger.Errorf("failed to encode JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":-500,"message":"failed to encode response"}}` + "\n"))
		return http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return status
}

// writeValue writes a stored value verbatim
func writeValue(w http.ResponseWriter, value []byte) int {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(value)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
	return http.StatusOK
}

func errorBody(status int, msg string) *common.ErrorBody {
	return &common.ErrorBody{Code: -status, Message: msg}
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	return writeJSON(w, status, common.ErrorResponse{Error: *errorBody(status, msg)})
}

func writeMethodNotAllowed(w http.ResponseWriter, allow string) int {
	w.Header().Set("Allow", allow)
	return writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeResult(w http.ResponseWriter, result bool) int {
	return writeJSON(w, http.StatusOK, common.ResultResponse{Result: result})
}

// writeFailedResult reports an engine failure on a mutating operation
func writeFailedResult(w http.ResponseWriter, msg string) int {
	return writeJSON(w, http.StatusInternalServerError, common.ResultResponse{
		Result: false,
		Error:  errorBody(http.StatusInternalServerError, msg),
	})
}
