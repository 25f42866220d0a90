package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
)

// Postgres implementa a persistência do núcleo de apostas
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var ErrNotFound = errors.New("not found")

// CreateMarket insere o mercado e suas opções numa transação única
func (p *Postgres) CreateMarket(ctx context.Context, m *domain.Market, opts []*domain.Option) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := m.Metadata
	if meta == nil {
		meta = json.RawMessage("{}")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO betting_markets
		  (id, match_id, kind, name, description, is_active, status, opens_at, closes_at,
		   min_stake, max_stake, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)`,
		m.ID, m.MatchID, m.Kind, m.Name, m.Description, m.IsActive, m.Status,
		m.OpensAt, m.ClosesAt, nullDecimal(m.MinStake), nullDecimal(m.MaxStake),
		[]byte(meta), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert market: %w", err)
	}

	for _, o := range opts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO market_options
			  (id, market_id, key, name, odds, total_stake, bet_count, is_active, is_winning_option)
			VALUES ($1,$2,$3,$4,$5,0,0,$6,FALSE)`,
			o.ID, o.MarketID, o.Key, o.Name, o.Odds, o.IsActive,
		); err != nil {
			return fmt.Errorf("insert option %s: %w", o.Key, err)
		}
	}

	return tx.Commit()
}

// GetMarket carrega um mercado pelo id
func (p *Postgres) GetMarket(ctx context.Context, id string) (*domain.Market, error) {
	return scanMarket(p.db.QueryRowContext(ctx, selectMarket+` WHERE id=$1`, id))
}

// GetMarketByMatchAndKind localiza o mercado de um tipo para uma partida
// Retorna ErrNotFound quando a partida não tem mercado daquele tipo
func (p *Postgres) GetMarketByMatchAndKind(ctx context.Context, matchID string, kind domain.MarketKind) (*domain.Market, error) {
	return scanMarket(p.db.QueryRowContext(ctx,
		selectMarket+` WHERE match_id=$1 AND kind=$2 ORDER BY created_at DESC LIMIT 1`, matchID, kind))
}

// GetMarketOptions lista as opções de um mercado
func (p *Postgres) GetMarketOptions(ctx context.Context, marketID string) ([]*domain.Option, error) {
	rows, err := p.db.QueryContext(ctx, selectOption+` WHERE market_id=$1 ORDER BY key`, marketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Option
	for rows.Next() {
		o, err := scanOptionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOptionOdds grava a odd recalculada de uma opção
func (p *Postgres) UpdateOptionOdds(ctx context.Context, optionID string, odds decimal.Decimal) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE market_options SET odds=$1 WHERE id=$2`, odds, optionID)
	return err
}

// SuspendMarket pausa o mercado; ReopenMarket desfaz a pausa
func (p *Postgres) SuspendMarket(ctx context.Context, id string) (*domain.Market, error) {
	return p.transitionMarket(ctx, id, func(m *domain.Market) error { return m.Suspend() })
}

func (p *Postgres) ReopenMarket(ctx context.Context, id string) (*domain.Market, error) {
	return p.transitionMarket(ctx, id, func(m *domain.Market) error { return m.Reopen() })
}

// transitionMarket aplica uma transição de status sob lock de linha
func (p *Postgres) transitionMarket(ctx context.Context, id string, fn func(*domain.Market) error) (*domain.Market, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := scanMarket(tx.QueryRowContext(ctx, selectMarket+` WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE betting_markets SET status=$1, updated_at=NOW() WHERE id=$2`,
		m.Status, id); err != nil {
		return nil, err
	}
	return m, tx.Commit()
}

// DeleteMarket remove um mercado sem apostas (e suas opções)
func (p *Postgres) DeleteMarket(ctx context.Context, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bets int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bets WHERE market_id=$1`, id).Scan(&bets); err != nil {
		return err
	}
	if bets > 0 {
		return domain.ErrMarketHasBets
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM market_options WHERE market_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM betting_markets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// PlaceBet cria a aposta e atualiza os agregados da opção numa transação só.
// O mercado entra com FOR SHARE: colocações correm em paralelo entre si,
// mas ficam bloqueadas pelo FOR UPDATE que a liquidação toma na largada.
// Os agregados são incrementos atômicos no próprio UPDATE (nunca read-modify-write).
func (p *Postgres) PlaceBet(ctx context.Context, userID, optionID string, stake decimal.Decimal, method domain.PaymentMethod, defaultMin, defaultMax decimal.Decimal, now time.Time) (*domain.Bet, *domain.Market, *domain.Option, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+marketCols("m")+`, `+optionCols("o")+`
		FROM market_options o
		JOIN betting_markets m ON m.id = o.market_id
		WHERE o.id=$1
		FOR SHARE OF m`, optionID)
	m, o, err := scanMarketAndOption(row)
	if err != nil {
		return nil, nil, nil, err
	}

	b, err := domain.NewBet(userID, m, o, stake, method, defaultMin, defaultMax, now)
	if err != nil {
		return nil, nil, nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bets
		  (id, user_id, market_id, option_id, stake, odds_at_placement, potential_payout,
		   actual_payout, status, payment_method, payment_status, payout_status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,$8,$9,$10,$11,$12)`,
		b.ID, b.UserID, b.MarketID, b.OptionID, b.Stake, b.OddsAtPlacement, b.PotentialPayout,
		b.Status, b.PaymentMethod, b.PaymentStatus, b.PayoutStatus, b.PlacedAt,
	); err != nil {
		return nil, nil, nil, fmt.Errorf("insert bet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE market_options
		SET total_stake = total_stake + $1, bet_count = bet_count + 1
		WHERE id=$2`, b.Stake, b.OptionID,
	); err != nil {
		return nil, nil, nil, fmt.Errorf("increment option aggregates: %w", err)
	}

	if err := recordBetTransition(ctx, tx, b.ID, "", string(b.Status), "placed", now); err != nil {
		return nil, nil, nil, err
	}

	return b, m, o, tx.Commit()
}

// GetBet carrega uma aposta pelo id
func (p *Postgres) GetBet(ctx context.Context, id string) (*domain.Bet, error) {
	return scanBet(p.db.QueryRowContext(ctx, selectBet+` WHERE id=$1`, id))
}

// ConfirmPayment aplica a confirmação do colaborador de pagamento (pending → active)
func (p *Postgres) ConfirmPayment(ctx context.Context, betID, paymentRef string, now time.Time) (*domain.Bet, error) {
	return p.transitionBet(ctx, betID, "payment confirmed", now, func(b *domain.Bet) error {
		return b.ConfirmPayment(paymentRef, now)
	})
}

// FailPayment registra a falha de cobrança; a aposta segue pendente até a liquidação
func (p *Postgres) FailPayment(ctx context.Context, betID string, now time.Time) (*domain.Bet, error) {
	return p.transitionBet(ctx, betID, "payment failed", now, func(b *domain.Bet) error {
		return b.FailPayment()
	})
}

// RecordPayout grava o retorno do colaborador de desembolso numa aposta vencedora
func (p *Postgres) RecordPayout(ctx context.Context, betID string, status domain.PayoutStatus, now time.Time) (*domain.Bet, error) {
	return p.transitionBet(ctx, betID, "payout "+string(status), now, func(b *domain.Bet) error {
		return b.RecordPayout(status, now)
	})
}

// transitionBet aplica uma transição de aposta sob lock de linha e grava o histórico
func (p *Postgres) transitionBet(ctx context.Context, betID, reason string, now time.Time, fn func(*domain.Bet) error) (*domain.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := scanBet(tx.QueryRowContext(ctx, selectBet+` WHERE id=$1 FOR UPDATE`, betID))
	if err != nil {
		return nil, err
	}
	from := string(b.Status)
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := updateBet(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := recordBetTransition(ctx, tx, b.ID, from, string(b.Status), reason, now); err != nil {
		return nil, err
	}
	return b, tx.Commit()
}

// updateBet persiste todos os campos mutáveis de uma aposta
func updateBet(ctx context.Context, tx *sql.Tx, b *domain.Bet) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bets SET
		  actual_payout=$1, status=$2, payment_status=$3, payment_ref=$4,
		  payment_confirmed_at=$5, payout_status=$6, payout_processed_at=$7,
		  settled_at=$8, cancel_reason=$9
		WHERE id=$10`,
		b.ActualPayout, b.Status, b.PaymentStatus, b.PaymentRef,
		b.PaymentConfirmedAt, b.PayoutStatus, b.PayoutProcessedAt,
		b.SettledAt, b.CancelReason, b.ID,
	)
	return err
}

// recordBetTransition grava o histórico de mudança de estado da aposta
func recordBetTransition(ctx context.Context, tx *sql.Tx, betID, from, to, reason string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bet_transitions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,$2,$3,$4,$5)`, betID, from, to, reason, now)
	return err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
