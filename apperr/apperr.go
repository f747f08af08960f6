package apperr

import "net/http"

// Error carrega a classe de status HTTP junto da mensagem, no mesmo
// espírito dos erros com statusCode que os controllers mapeiam direto
// para a resposta.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func Invalid(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, msg)
}

func Internal(msg string) *Error {
	return New(http.StatusInternalServerError, msg)
}

// Status devolve a classe de status de qualquer erro; erros não
// tipados viram 500.
func Status(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
