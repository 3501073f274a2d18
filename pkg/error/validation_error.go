package error

import "net/http"

type validationError string

func ValidationError(message string) GenericError {
	return validationError(message)
}

func (err validationError) Error() string {
	return string(err)
}

func (err validationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err validationError) StatusCode() int {
	return http.StatusBadRequest
}
