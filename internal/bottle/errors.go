package bottle

import (
	"errors"
	"fmt"
)

// Ошибки разбора запроса. Все они - ошибки клиента.
var (
	ErrInvalidProject       = errors.New("недопустимое имя проекта")
	ErrUnrecognizedFilename = errors.New("имя файла не распознано как бутылка")
	ErrMalformedVersion     = errors.New("некорректная версия в имени файла")
)

// Машиночитаемые коды ошибок разбора.
const (
	CodeInvalidProject       = "invalid_project"
	CodeUnrecognizedFilename = "unrecognized_filename"
	CodeMalformedVersion     = "malformed_version"
)

// ParseError описывает отказ в разборе с указанием входных данных.
type ParseError struct {
	Code  string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(sentinel error, input string) *ParseError {
	var code string
	switch {
	case errors.Is(sentinel, ErrInvalidProject):
		code = CodeInvalidProject
	case errors.Is(sentinel, ErrMalformedVersion):
		code = CodeMalformedVersion
	default:
		code = CodeUnrecognizedFilename
	}
	return &ParseError{Code: code, Input: input, Err: sentinel}
}
