package error

// GenericError is implemented by errors that carry an HTTP status and a
// stable error code for the REST layer.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
