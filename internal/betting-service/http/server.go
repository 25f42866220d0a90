package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
	"github.com/radieske/match-betting-core/internal/betting-service/dto"
	"github.com/radieske/match-betting-core/internal/betting-service/odds"
	"github.com/radieske/match-betting-core/internal/betting-service/repo"
	"github.com/radieske/match-betting-core/internal/betting-service/ws"
	"github.com/radieske/match-betting-core/internal/shared/metrics"
	"github.com/radieske/match-betting-core/pkg/contracts/events"
)

// Publisher é a fatia do produtor Kafka que a API usa
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishMarketSettled(ctx context.Context, e events.MarketSettled) error
}

// Server expõe a API REST do núcleo de apostas
// O relógio é injetável: cada operação lê "agora" uma única vez
type Server struct {
	log    *zap.Logger
	repo   *repo.Postgres
	recalc *odds.Recalculator
	cache  *odds.Cache
	publ   Publisher
	hub    *ws.Hub
	minBet decimal.Decimal
	maxBet decimal.Decimal
	now    func() time.Time
}

func NewServer(log *zap.Logger, r *repo.Postgres, rc *odds.Recalculator, cache *odds.Cache, p Publisher, hub *ws.Hub, minBet, maxBet decimal.Decimal) *Server {
	return &Server{
		log:    log,
		repo:   r,
		recalc: rc,
		cache:  cache,
		publ:   p,
		hub:    hub,
		minBet: minBet,
		maxBet: maxBet,
		now:    time.Now,
	}
}

// Router retorna o roteador HTTP com os endpoints REST
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/markets", s.createMarket)
	r.Get("/v1/markets/{id}", s.getMarket)
	r.Delete("/v1/markets/{id}", s.deleteMarket)
	r.Get("/v1/markets/{id}/odds", s.getOdds)
	r.Post("/v1/markets/{id}/suspend", s.suspendMarket)
	r.Post("/v1/markets/{id}/reopen", s.reopenMarket)
	r.Post("/v1/markets/{id}/settle", s.settleMarket) // liquidação manual (operador)
	r.Post("/v1/markets/{id}/cancel", s.cancelMarket)

	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Post("/v1/bets/{id}/payment/confirm", s.confirmPayment)
	r.Post("/v1/bets/{id}/payment/fail", s.failPayment)
	r.Post("/v1/bets/{id}/payout", s.recordPayout)

	if s.hub != nil {
		r.Get("/ws", s.hub.HandleWS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor mapeia a taxonomia de erros do domínio pra códigos HTTP:
// validação → 400, conflito de estado → 409, não encontrado → 404
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMarketClosed),
		errors.Is(err, domain.ErrOptionInactive),
		errors.Is(err, domain.ErrStakeBelowMinimum),
		errors.Is(err, domain.ErrStakeAboveMaximum),
		errors.Is(err, domain.ErrInvalidWinningOption):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMarketAlreadySettled),
		errors.Is(err, domain.ErrMarketNotActive),
		errors.Is(err, domain.ErrMarketNotSuspended),
		errors.Is(err, domain.ErrMarketHasBets),
		errors.Is(err, domain.ErrBetAlreadySettled),
		errors.Is(err, domain.ErrPaymentNotPending),
		errors.Is(err, domain.ErrBetNotWon):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// rejectionReason etiqueta a métrica de apostas recusadas
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMarketClosed):
		return "market_closed"
	case errors.Is(err, domain.ErrOptionInactive):
		return "option_inactive"
	case errors.Is(err, domain.ErrStakeBelowMinimum):
		return "stake_below_minimum"
	case errors.Is(err, domain.ErrStakeAboveMaximum):
		return "stake_above_maximum"
	}
	return "other"
}

func (s *Server) createMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	now := s.now()
	var m *domain.Market
	var opts []*domain.Option

	if len(req.Options) == 0 {
		// Mercado canônico 1x2; fecha as apostas no início da partida
		if req.MatchStartsAt == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "match_starts_at required for default market"})
			return
		}
		m, opts = domain.NewDefaultMarket(req.MatchID, req.Name, *req.MatchStartsAt, now)
	} else {
		built, err := buildCustomMarket(&req, now)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		m = built.market
		opts = built.options
	}
	m.Description = req.Description
	if req.OpensAt != nil {
		m.OpensAt = req.OpensAt
	}
	if req.ClosesAt != nil {
		m.ClosesAt = req.ClosesAt
	}
	if req.MinStake != "" {
		d, err := decimal.NewFromString(req.MinStake)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_stake"})
			return
		}
		m.MinStake = &d
	}
	if req.MaxStake != "" {
		d, err := decimal.NewFromString(req.MaxStake)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max_stake"})
			return
		}
		m.MaxStake = &d
	}

	if err := s.repo.CreateMarket(r.Context(), m, opts); err != nil {
		s.log.Error("create market", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToMarketResponse(m, opts))
}

type builtMarket struct {
	market  *domain.Market
	options []*domain.Option
}

func buildCustomMarket(req *dto.CreateMarketRequest, now time.Time) (*builtMarket, error) {
	kind := domain.MarketKind(req.Kind)
	if kind == "" {
		kind = domain.KindThreeWayResult
	}
	m := &domain.Market{
		ID:        uuid.NewString(),
		MatchID:   req.MatchID,
		Kind:      kind,
		Name:      req.Name,
		IsActive:  true,
		Status:    domain.MarketActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var opts []*domain.Option
	for _, spec := range req.Options {
		odd, err := decimal.NewFromString(spec.Odds)
		if err != nil {
			return nil, errors.New("invalid odds for option " + spec.Key)
		}
		if odd.LessThan(domain.MinOdds) {
			return nil, errors.New("odds below minimum for option " + spec.Key)
		}
		opts = append(opts, domain.NewOption(m.ID, spec.Key, spec.Name, odd))
	}
	return &builtMarket{market: m, options: opts}, nil
}

func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.repo.GetMarket(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	opts, err := s.repo.GetMarketOptions(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToMarketResponse(m, opts))
}

func (s *Server) deleteMarket(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteMarket(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getOdds responde as quotes correntes, preferencialmente do cache Redis
func (s *Server) getOdds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if cached, ok, _ := s.cache.GetQuotes(r.Context(), id); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	m, err := s.repo.GetMarket(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	opts, err := s.repo.GetMarketOptions(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	upd := events.OddsUpdate{
		MarketID:  m.ID,
		MatchID:   m.MatchID,
		UpdatedAt: s.now().UTC(),
		Source:    "betting-service",
	}
	for _, o := range opts {
		upd.Options = append(upd.Options, events.OptionOdds{
			OptionID:  o.ID,
			OptionKey: o.Key,
			Odds:      o.Odds.StringFixed(2),
		})
	}
	_ = s.cache.SetQuotes(r.Context(), upd)
	writeJSON(w, http.StatusOK, upd)
}

func (s *Server) suspendMarket(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.SuspendMarket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"market_id": m.ID, "status": string(m.Status)})
}

func (s *Server) reopenMarket(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.ReopenMarket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"market_id": m.ID, "status": string(m.Status)})
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	stake, err := decimal.NewFromString(req.Stake)
	if err != nil || !stake.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stake"})
		return
	}

	now := s.now()
	b, m, o, err := s.repo.PlaceBet(
		r.Context(), req.UserID, req.OptionID, stake,
		domain.PaymentMethod(req.PaymentMethod), s.minBet, s.maxBet, now,
	)
	if err != nil {
		metrics.BetsRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeErr(w, err)
		return
	}
	metrics.BetsPlaced.Inc()

	// Recálculo de odds e evento são assíncronos: a quote é "recente",
	// não linearizável com o último stake
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recalc.RecalculateMarket(ctx, m.ID, m.MatchID, now); err != nil {
			s.log.Warn("odds recalculation", zap.String("marketId", m.ID), zap.Error(err))
		}
	}()
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:           b.ID,
		UserID:          b.UserID,
		MarketID:        b.MarketID,
		OptionID:        b.OptionID,
		OptionKey:       o.Key,
		Stake:           b.Stake.StringFixed(2),
		OddsAtPlacement: b.OddsAtPlacement.StringFixed(2),
		PaymentMethod:   string(b.PaymentMethod),
	})

	writeJSON(w, http.StatusCreated, dto.ToBetResponse(b))
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.GetBet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBetResponse(b))
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := s.repo.ConfirmPayment(r.Context(), chi.URLParam(r, "id"), req.PaymentRef, s.now())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBetResponse(b))
}

func (s *Server) failPayment(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.FailPayment(r.Context(), chi.URLParam(r, "id"), s.now())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBetResponse(b))
}

func (s *Server) recordPayout(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status := domain.PayoutCompleted
	if req.Status == "failed" {
		status = domain.PayoutFailed
	}
	b, err := s.repo.RecordPayout(r.Context(), chi.URLParam(r, "id"), status, s.now())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBetResponse(b))
}

// settleMarket é o caminho manual: o operador informa os vencedores
func (s *Server) settleMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.ManualSettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	marketID := chi.URLParam(r, "id")
	m, err := s.repo.GetMarket(r.Context(), marketID)
	if err != nil {
		writeErr(w, err)
		return
	}
	opts, err := s.repo.GetMarketOptions(r.Context(), marketID)
	if err != nil {
		writeErr(w, err)
		return
	}

	now := s.now()
	out, err := domain.NewManualOutcome(marketID, opts, req.WinningOptionIDs, req.SettledBy, req.Notes, now)
	if err != nil {
		writeErr(w, err)
		return
	}

	start := time.Now()
	sum, err := s.repo.SettleMarket(r.Context(), out, now)
	if err != nil {
		writeErr(w, err)
		return
	}
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	metrics.MarketsSettled.WithLabelValues(string(domain.SettlementManual)).Inc()
	observeSummary(sum)

	_ = s.publ.PublishMarketSettled(r.Context(), events.MarketSettled{
		MarketID:         marketID,
		MatchID:          m.MatchID,
		SettlementType:   string(domain.SettlementManual),
		WinningOptionIDs: req.WinningOptionIDs,
		BetsWon:          sum.Won,
		BetsLost:         sum.Lost,
		BetsCancelled:    sum.Cancelled,
		TotalPaidOut:     sum.TotalPaidOut.String(),
		SettledAt:        now,
	})

	writeJSON(w, http.StatusOK, dto.SettlementResponse{
		MarketID:      marketID,
		Status:        string(domain.MarketSettled),
		BetsWon:       sum.Won,
		BetsLost:      sum.Lost,
		BetsCancelled: sum.Cancelled,
		TotalPaidOut:  sum.TotalPaidOut.String(),
	})
}

// cancelMarket anula o mercado e devolve todos os stakes
func (s *Server) cancelMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	marketID := chi.URLParam(r, "id")
	m, err := s.repo.GetMarket(r.Context(), marketID)
	if err != nil {
		writeErr(w, err)
		return
	}

	now := s.now()
	out := domain.NewCancelledOutcome(marketID, req.CancelledBy, req.Reason, now)

	sum, err := s.repo.CancelMarket(r.Context(), out, now)
	if err != nil {
		writeErr(w, err)
		return
	}
	metrics.MarketsSettled.WithLabelValues(string(domain.SettlementCancelled)).Inc()
	metrics.BetsSettled.WithLabelValues("cancelled").Add(float64(sum.Cancelled))

	_ = s.publ.PublishMarketSettled(r.Context(), events.MarketSettled{
		MarketID:       marketID,
		MatchID:        m.MatchID,
		SettlementType: string(domain.SettlementCancelled),
		BetsCancelled:  sum.Cancelled,
		TotalPaidOut:   sum.TotalPaidOut.String(),
		SettledAt:      now,
	})

	writeJSON(w, http.StatusOK, dto.SettlementResponse{
		MarketID:      marketID,
		Status:        string(domain.MarketCancelled),
		BetsCancelled: sum.Cancelled,
		TotalPaidOut:  sum.TotalPaidOut.String(),
	})
}

func observeSummary(sum domain.Summary) {
	metrics.BetsSettled.WithLabelValues("won").Add(float64(sum.Won))
	metrics.BetsSettled.WithLabelValues("lost").Add(float64(sum.Lost))
	metrics.BetsSettled.WithLabelValues("cancelled").Add(float64(sum.Cancelled))
}
