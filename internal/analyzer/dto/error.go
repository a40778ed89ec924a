package dto

// ErrorResponse is the body of every failed API call. Error is one of a
// fixed set of messages; causes are never included.
type ErrorResponse struct {
	Error string `json:"error"`
}
