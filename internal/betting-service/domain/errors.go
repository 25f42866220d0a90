package domain

import "errors"

// Erros de validação (corrigíveis pelo chamador, sem efeitos colaterais)
var (
	ErrMarketClosed         = errors.New("market is not open for betting")
	ErrOptionInactive       = errors.New("option is not accepting bets")
	ErrStakeBelowMinimum    = errors.New("stake below market minimum")
	ErrStakeAboveMaximum    = errors.New("stake above market maximum")
	ErrInvalidWinningOption = errors.New("winning option does not belong to market")
)

// Erros de conflito de estado
var (
	ErrMarketAlreadySettled = errors.New("market already settled")
	ErrMarketNotActive      = errors.New("market is not active")
	ErrMarketNotSuspended   = errors.New("market is not suspended")
	ErrMarketHasBets        = errors.New("market has bets and cannot be deleted")
	ErrBetAlreadySettled    = errors.New("bet already settled")
	ErrPaymentNotPending    = errors.New("payment is not pending")
	ErrBetNotWon            = errors.New("bet is not in won state")
)
