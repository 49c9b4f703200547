package negotiation

import "errors"

var (
	// ErrRoomNotFound комната не найдена
	ErrRoomNotFound = errors.New("negotiation: room not found")

	// ErrNegotiationNotFound переговоры не найдены
	ErrNegotiationNotFound = errors.New("negotiation: negotiation not found")

	// ErrNotMember пользователь не участник и не владелец комнаты
	ErrNotMember = errors.New("negotiation: user is not a room member")

	// ErrNotOwner действие доступно только владельцу комнаты
	ErrNotOwner = errors.New("negotiation: only the room owner can do this")

	// ErrNotParticipant пользователь не входит в число спорящих участников
	ErrNotParticipant = errors.New("negotiation: user is not a conflicting member")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("negotiation: invalid input")

	// ErrInvalidState ответ невозможен в текущем состоянии участника
	ErrInvalidState = errors.New("negotiation: invalid state")

	// ErrAlreadyResolved переговоры уже завершены
	ErrAlreadyResolved = errors.New("negotiation: negotiation already resolved")

	// ErrOverlappingResponse пользователь уже ответил в других переговорах на пересекающееся время
	ErrOverlappingResponse = errors.New("negotiation: already responded to a negotiation for overlapping time")

	// ErrSlotTaken выбранное время занято
	ErrSlotTaken = errors.New("negotiation: chosen time is taken")

	// ErrConcurrentModification комната изменена параллельным запросом
	ErrConcurrentModification = errors.New("negotiation: concurrent modification")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("negotiation: internal error")
)
