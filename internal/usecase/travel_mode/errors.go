package travel_mode

import "errors"

var (
	// ErrInvalidInput некорректные параметры
	ErrInvalidInput = errors.New("travel_mode: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("travel_mode: internal error")
)
