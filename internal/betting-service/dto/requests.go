package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// OptionSpec descreve uma opção na criação de mercado
type OptionSpec struct {
	Key  string `json:"key" validate:"required"`
	Name string `json:"name" validate:"required"`
	Odds string `json:"odds" validate:"required"` // decimal, ex: "2.00"
}

// CreateMarketRequest cria um mercado. Sem options, cria o mercado canônico
// 1x2 (home/draw/away) e exige match_starts_at pra fechar as apostas.
type CreateMarketRequest struct {
	MatchID       string       `json:"match_id" validate:"required"`
	Kind          string       `json:"kind" validate:"omitempty,oneof=three_way_result correct_score total_goals player_scoring"`
	Name          string       `json:"name" validate:"required"`
	Description   string       `json:"description"`
	OpensAt       *time.Time   `json:"opens_at"`
	ClosesAt      *time.Time   `json:"closes_at"`
	MatchStartsAt *time.Time   `json:"match_starts_at"`
	MinStake      string       `json:"min_stake"` // decimal opcional, sobrescreve o default
	MaxStake      string       `json:"max_stake"`
	Options       []OptionSpec `json:"options" validate:"dive"`
}

func (r *CreateMarketRequest) Validate() error { return validate.Struct(r) }

type PlaceBetRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	OptionID      string `json:"option_id" validate:"required"`
	Stake         string `json:"stake" validate:"required"` // decimal como string
	PaymentMethod string `json:"payment_method" validate:"required,oneof=online offline wallet"`
}

func (r *PlaceBetRequest) Validate() error { return validate.Struct(r) }

// ConfirmPaymentRequest vem do colaborador de pagamento
type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" validate:"required"`
}

func (r *ConfirmPaymentRequest) Validate() error { return validate.Struct(r) }

// RecordPayoutRequest vem do colaborador de desembolso
type RecordPayoutRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed"`
}

func (r *RecordPayoutRequest) Validate() error { return validate.Struct(r) }

// ManualSettleRequest liquida o mercado com vencedores informados pelo operador
type ManualSettleRequest struct {
	WinningOptionIDs []string `json:"winning_option_ids" validate:"required,min=1"`
	SettledBy        string   `json:"settled_by" validate:"required"`
	Notes            string   `json:"notes"`
}

func (r *ManualSettleRequest) Validate() error { return validate.Struct(r) }

// CancelMarketRequest anula o mercado e devolve todos os stakes
type CancelMarketRequest struct {
	CancelledBy string `json:"cancelled_by" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
}

func (r *CancelMarketRequest) Validate() error { return validate.Struct(r) }
