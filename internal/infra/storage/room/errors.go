package room

import "errors"

var (
	// ErrRoomNotFound возвращается, когда комната не найдена
	ErrRoomNotFound = errors.New("room.repository: room not found")

	// ErrRoomExists возвращается при повторном создании комнаты
	ErrRoomExists = errors.New("room.repository: room already exists")

	// ErrVersionConflict возвращается, когда комнату успели изменить после чтения
	ErrVersionConflict = errors.New("room.repository: version conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("room.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("room.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("room.repository: failed to scan row")

	// ErrMarshal возвращается при ошибке (де)сериализации JSONB колонок
	ErrMarshal = errors.New("room.repository: failed to marshal aggregate")
)
