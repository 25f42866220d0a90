package repo

import (
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
)

// Colunas na ordem esperada pelos scans abaixo; manter em sincronia
var marketColNames = []string{
	"id", "match_id", "kind", "name", "description", "is_active", "status",
	"opens_at", "closes_at", "settled_at", "min_stake", "max_stake",
	"metadata", "created_at", "updated_at",
}

var optionColNames = []string{
	"id", "market_id", "key", "name", "odds", "total_stake", "bet_count",
	"is_active", "is_winning_option",
}

var betColNames = []string{
	"id", "user_id", "market_id", "option_id", "stake", "odds_at_placement",
	"potential_payout", "actual_payout", "status", "payment_method",
	"payment_status", "payment_ref", "payment_confirmed_at", "payout_status",
	"payout_processed_at", "placed_at", "settled_at", "cancel_reason",
}

func cols(alias string, names []string) string {
	if alias == "" {
		return strings.Join(names, ", ")
	}
	prefixed := make([]string, len(names))
	for i, n := range names {
		prefixed[i] = alias + "." + n
	}
	return strings.Join(prefixed, ", ")
}

func marketCols(alias string) string { return cols(alias, marketColNames) }
func optionCols(alias string) string { return cols(alias, optionColNames) }
func betCols(alias string) string    { return cols(alias, betColNames) }

var (
	selectMarket = `SELECT ` + marketCols("") + ` FROM betting_markets`
	selectOption = `SELECT ` + optionCols("") + ` FROM market_options`
	selectBet    = `SELECT ` + betCols("") + ` FROM bets`
)

// scanner cobre *sql.Row e *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanMarketFields(s scanner, m *domain.Market) error {
	var opensAt, closesAt, settledAt sql.NullTime
	var minStake, maxStake decimal.NullDecimal
	var meta []byte

	err := s.Scan(
		&m.ID, &m.MatchID, &m.Kind, &m.Name, &m.Description, &m.IsActive, &m.Status,
		&opensAt, &closesAt, &settledAt, &minStake, &maxStake,
		&meta, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if opensAt.Valid {
		m.OpensAt = &opensAt.Time
	}
	if closesAt.Valid {
		m.ClosesAt = &closesAt.Time
	}
	if settledAt.Valid {
		m.SettledAt = &settledAt.Time
	}
	if minStake.Valid {
		m.MinStake = &minStake.Decimal
	}
	if maxStake.Valid {
		m.MaxStake = &maxStake.Decimal
	}
	m.Metadata = meta
	return nil
}

func scanMarket(s scanner) (*domain.Market, error) {
	var m domain.Market
	if err := scanMarketFields(s, &m); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func scanOptionFields(s scanner, o *domain.Option) error {
	return s.Scan(
		&o.ID, &o.MarketID, &o.Key, &o.Name, &o.Odds, &o.TotalStake, &o.BetCount,
		&o.IsActive, &o.IsWinningOption,
	)
}

func scanOptionRows(rows *sql.Rows) (*domain.Option, error) {
	var o domain.Option
	if err := scanOptionFields(rows, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// scanMarketAndOption lê mercado e opção vindos de um JOIN único
func scanMarketAndOption(s scanner) (*domain.Market, *domain.Option, error) {
	var m domain.Market
	var o domain.Option
	var opensAt, closesAt, settledAt sql.NullTime
	var minStake, maxStake decimal.NullDecimal
	var meta []byte

	err := s.Scan(
		&m.ID, &m.MatchID, &m.Kind, &m.Name, &m.Description, &m.IsActive, &m.Status,
		&opensAt, &closesAt, &settledAt, &minStake, &maxStake,
		&meta, &m.CreatedAt, &m.UpdatedAt,
		&o.ID, &o.MarketID, &o.Key, &o.Name, &o.Odds, &o.TotalStake, &o.BetCount,
		&o.IsActive, &o.IsWinningOption,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if opensAt.Valid {
		m.OpensAt = &opensAt.Time
	}
	if closesAt.Valid {
		m.ClosesAt = &closesAt.Time
	}
	if settledAt.Valid {
		m.SettledAt = &settledAt.Time
	}
	if minStake.Valid {
		m.MinStake = &minStake.Decimal
	}
	if maxStake.Valid {
		m.MaxStake = &maxStake.Decimal
	}
	m.Metadata = meta
	return &m, &o, nil
}

func scanBetFields(s scanner, b *domain.Bet) error {
	var paymentConfirmedAt, payoutProcessedAt, settledAt sql.NullTime

	err := s.Scan(
		&b.ID, &b.UserID, &b.MarketID, &b.OptionID, &b.Stake, &b.OddsAtPlacement,
		&b.PotentialPayout, &b.ActualPayout, &b.Status, &b.PaymentMethod,
		&b.PaymentStatus, &b.PaymentRef, &paymentConfirmedAt, &b.PayoutStatus,
		&payoutProcessedAt, &b.PlacedAt, &settledAt, &b.CancelReason,
	)
	if err != nil {
		return err
	}
	if paymentConfirmedAt.Valid {
		b.PaymentConfirmedAt = &paymentConfirmedAt.Time
	}
	if payoutProcessedAt.Valid {
		b.PayoutProcessedAt = &payoutProcessedAt.Time
	}
	if settledAt.Valid {
		b.SettledAt = &settledAt.Time
	}
	return nil
}

func scanBet(s scanner) (*domain.Bet, error) {
	var b domain.Bet
	if err := scanBetFields(s, &b); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
