package negotiation

import "errors"

var (
	// ErrResolved возвращается при попытке изменить завершенные переговоры
	ErrResolved = errors.New("negotiation.engine: negotiation already resolved")

	// ErrNotParticipant возвращается, если пользователь не участвует в переговорах
	ErrNotParticipant = errors.New("negotiation.engine: user is not a conflicting member")

	// ErrAlreadyResponded возвращается при повторном ответе без отмены предыдущего
	ErrAlreadyResponded = errors.New("negotiation.engine: member already responded")

	// ErrNotResponded возвращается при отмене ответа, которого не было
	ErrNotResponded = errors.New("negotiation.engine: member has not responded")

	// ErrInvalidResponse возвращается, если ответ не подходит к типу переговоров
	ErrInvalidResponse = errors.New("negotiation.engine: response does not fit negotiation type")

	// ErrSlotUnavailable возвращается, если выбранное или альтернативное время недоступно
	ErrSlotUnavailable = errors.New("negotiation.engine: chosen time is not available")

	// ErrInvalidNegotiation возвращается при некорректных параметрах открытия переговоров
	ErrInvalidNegotiation = errors.New("negotiation.engine: invalid negotiation parameters")
)
