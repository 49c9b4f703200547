package rooms

import "errors"

var (
	// ErrRoomNotFound возвращается, когда комната не найдена
	ErrRoomNotFound = errors.New("rooms.service: room not found")

	// ErrConcurrentModification возвращается, когда комнату изменили параллельно
	ErrConcurrentModification = errors.New("rooms.service: room was modified concurrently")

	// ErrRoomBusy возвращается, когда не удалось дождаться блокировки комнаты
	ErrRoomBusy = errors.New("rooms.service: room is busy")

	// ErrAccessDenied возвращается, когда пользователь не участник и не владелец комнаты
	ErrAccessDenied = errors.New("rooms.service: access denied")

	// ErrInvalidInput возвращается при некорректном снимке комнаты
	ErrInvalidInput = errors.New("rooms.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("rooms.service: internal error")
)
