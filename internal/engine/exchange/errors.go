package exchange

import "errors"

var (
	// ErrStaleChain возвращается, когда слоты цепочки уже не принадлежат ожидаемым участникам
	ErrStaleChain = errors.New("exchange.engine: chain slots changed since the request was created")

	// ErrNoChainData возвращается для звена цепочки без chainData
	ErrNoChainData = errors.New("exchange.engine: request has no chain data")
)
