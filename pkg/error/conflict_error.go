package error

import "net/http"

// ConflictError signals a state transition that the current status of the
// entity does not allow (e.g. cancelling an already published post).
type ConflictError string

func (err ConflictError) Error() string {
	return string(err)
}

func (err ConflictError) ErrCode() string {
	return "CONFLICT_ERROR"
}

func (err ConflictError) StatusCode() int {
	return http.StatusConflict
}
