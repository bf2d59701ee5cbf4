// Package report реализует HTTP-обработчики месячных отчётов:
// сводку подписок по планам и суммы оплаченных платежей.
//
// Период задаётся параметрами year и month; без них берётся текущий месяц.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trip-billing/internal/http/response"
	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
	"github.com/magabrotheeeer/trip-billing/internal/services/billing"
)

// Service отчётные выборки.
type Service interface {
	PlanReportFor(ctx context.Context, year, month int) (*billing.PlanReport, error)
	PaidTotalsFor(ctx context.Context, year, month int) (*billing.ChargeReport, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) period(r *http.Request) (int, int, error) {
	now := h.now().UTC()
	year, month := now.Year(), int(now.Month())
	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", raw)
		}
		year = v
	}
	if raw := q.Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid month %q", raw)
		}
		month = v
	}
	return year, month, nil
}

// Plans godoc
// @Summary Сводка подписок по планам
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Год"
// @Param month query int false "Месяц, 1-12"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /reports/plans [get]
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.plans"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, month, err := h.period(r)
	if err != nil {
		log.Warn("invalid period", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	report, err := h.service.PlanReportFor(r.Context(), year, month)
	if err != nil {
		log.Error("failed to build plan report", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not build report")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.OKWithData(report))
}

// Charges godoc
// @Summary Оплаченные платежи за месяц
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Год"
// @Param month query int false "Месяц, 1-12"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /reports/charges [get]
func (h *Handler) Charges(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.charges"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, month, err := h.period(r)
	if err != nil {
		log.Warn("invalid period", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	report, err := h.service.PaidTotalsFor(r.Context(), year, month)
	if err != nil {
		log.Error("failed to build charge report", sl.Err(err))
		status, resp := response.FromServiceError(err, "could not build report")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.OKWithData(report))
}
