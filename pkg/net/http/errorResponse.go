package http

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

const ApplicationJsonContentType = "application/json"

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteJSONResponse encodes v with json-iterator and writes it with the status code.
func WriteJSONResponse(w http.ResponseWriter, status int, v interface{}) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", ApplicationJsonContentType)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// WriteErrorResponse writes err as ErrorResponse with the status code.
func WriteErrorResponse(w http.ResponseWriter, status int, err error) error {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	return WriteJSONResponse(w, status, ErrorResponse{Code: status, Message: msg})
}
