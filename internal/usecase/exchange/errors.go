package exchange

import "errors"

var (
	// ErrRoomNotFound возвращается, когда комната не найдена
	ErrRoomNotFound = errors.New("exchange: room not found")

	// ErrRequestNotFound возвращается, когда запрос обмена не найден
	ErrRequestNotFound = errors.New("exchange: request not found")

	// ErrSlotNotFound возвращается, когда целевой или предложенный слот не найден
	ErrSlotNotFound = errors.New("exchange: slot not found")

	// ErrNotMember возвращается, когда пользователь не участник комнаты
	ErrNotMember = errors.New("exchange: user is not a room member")

	// ErrWrongRespondent возвращается, когда отвечает не тот пользователь
	ErrWrongRespondent = errors.New("exchange: user cannot act on this request")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("exchange: invalid input data")

	// ErrInvalidState возвращается, когда запрос в неподходящем состоянии для операции
	ErrInvalidState = errors.New("exchange: request is in a wrong state")

	// ErrAlreadyResolved возвращается, когда на запрос уже ответили
	ErrAlreadyResolved = errors.New("exchange: request already resolved")

	// ErrDuplicateRequest возвращается при повторном открытом запросе на тот же слот
	ErrDuplicateRequest = errors.New("exchange: an open request for this slot already exists")

	// ErrResolutionFailure возвращается, когда ни прямой обмен, ни перенос, ни цепочка невозможны.
	// Запрос при этом отклоняется, слоты не меняются.
	ErrResolutionFailure = errors.New("exchange: no way to resolve the request")

	// ErrStaleRequest возвращается, когда слоты запроса изменились с момента его создания
	ErrStaleRequest = errors.New("exchange: request slots changed")

	// ErrConcurrentModification возвращается, когда комнату изменили параллельно
	ErrConcurrentModification = errors.New("exchange: room was modified concurrently")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("exchange: internal error")
)
