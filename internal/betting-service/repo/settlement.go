package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
)

// SettleMarket executa a liquidação inteira numa transação única:
// o lock FOR UPDATE no mercado vem ANTES de iterar as apostas, fechando a
// janela em que uma colocação concorrente poderia escapar da rodada.
// Qualquer falha em qualquer aposta desfaz tudo; o chamador pode repetir.
func (p *Postgres) SettleMarket(ctx context.Context, out *domain.Outcome, now time.Time) (domain.Summary, error) {
	return p.runSettlement(ctx, out, now,
		func(bets []*domain.Bet) (domain.Summary, error) {
			return domain.ResolveBets(bets, out.WinningSet(), out.SettledAt)
		},
		func(m *domain.Market) error { return m.MarkSettled(out.SettledAt) },
	)
}

// CancelMarket anula o mercado: todas as apostas vivas recebem o stake de
// volta (inclusive as já pagas) e o mercado termina em cancelled.
func (p *Postgres) CancelMarket(ctx context.Context, out *domain.Outcome, now time.Time) (domain.Summary, error) {
	return p.runSettlement(ctx, out, now,
		func(bets []*domain.Bet) (domain.Summary, error) {
			return domain.RefundBets(bets, "market cancelled: "+out.Notes, out.SettledAt)
		},
		func(m *domain.Market) error { return m.MarkCancelled(out.SettledAt) },
	)
}

func (p *Postgres) runSettlement(
	ctx context.Context,
	out *domain.Outcome,
	now time.Time,
	resolve func([]*domain.Bet) (domain.Summary, error),
	finalize func(*domain.Market) error,
) (domain.Summary, error) {
	var zero domain.Summary

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	// 1) Lock exclusivo do mercado — bloqueia colocações (FOR SHARE) até o commit
	m, err := scanMarket(tx.QueryRowContext(ctx, selectMarket+` WHERE id=$1 FOR UPDATE`, out.MarketID))
	if err != nil {
		return zero, err
	}
	if m.Status == domain.MarketSettled || m.Status == domain.MarketCancelled {
		return zero, domain.ErrMarketAlreadySettled
	}

	// 2) Conjunto vencedor precisa pertencer ao mercado (reforço ao validado no domínio)
	winning := out.WinningSet()
	if len(winning) > 0 {
		valid := 0
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM market_options WHERE market_id=$1 AND id = ANY($2)`,
			m.ID, pq.Array(setToSlice(winning)))
		if err != nil {
			return zero, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return zero, err
			}
			valid++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return zero, err
		}
		if valid != len(winning) {
			return zero, domain.ErrInvalidWinningOption
		}
	}

	// 3) Desfecho é escrito uma vez só; a UNIQUE(market_id) segura corrida residual
	resultJSON, err := json.Marshal(out.Result)
	if err != nil {
		return zero, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO settlement_outcomes
		  (id, market_id, winning_option_id, actual_result, settled_by, settled_at, notes, requires_manual_review)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (market_id) DO NOTHING`,
		out.ID, out.MarketID, out.WinningOptionID, resultJSON,
		out.SettledBy, out.SettledAt, out.Notes, out.RequiresManualReview,
	)
	if err != nil {
		return zero, fmt.Errorf("insert outcome: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zero, domain.ErrMarketAlreadySettled
	}

	// 4) Marca as opções vencedoras (única mutação de opção pós-liquidação)
	if len(winning) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE market_options SET is_winning_option=TRUE WHERE id = ANY($1)`,
			pq.Array(setToSlice(winning))); err != nil {
			return zero, err
		}
	}

	// 5) Resolve cada aposta do mercado
	bets, err := lockBets(ctx, tx, m.ID)
	if err != nil {
		return zero, err
	}
	before := make(map[string]string, len(bets))
	for _, b := range bets {
		before[b.ID] = string(b.Status)
	}
	sum, err := resolve(bets)
	if err != nil {
		return zero, err
	}
	for _, b := range bets {
		if err := updateBet(ctx, tx, b); err != nil {
			return zero, fmt.Errorf("update bet %s: %w", b.ID, err)
		}
		if err := recordBetTransition(ctx, tx, b.ID, before[b.ID], string(b.Status), "settlement", now); err != nil {
			return zero, err
		}
	}

	// 6) Estado terminal do mercado por último, na mesma transação
	if err := finalize(m); err != nil {
		return zero, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE betting_markets SET status=$1, settled_at=$2, updated_at=NOW() WHERE id=$3`,
		m.Status, m.SettledAt, m.ID); err != nil {
		return zero, err
	}

	return sum, tx.Commit()
}

// lockBets carrega todas as apostas do mercado com lock de linha
func lockBets(ctx context.Context, tx *sql.Tx, marketID string) ([]*domain.Bet, error) {
	rows, err := tx.QueryContext(ctx, selectBet+` WHERE market_id=$1 ORDER BY placed_at FOR UPDATE`, marketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Bet
	for rows.Next() {
		var b domain.Bet
		if err := scanBetFields(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
