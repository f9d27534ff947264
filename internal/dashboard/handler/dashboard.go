package handler

import (
	"barberbook/internal/dashboard"
	"barberbook/pkg/auth"
	apperrors "barberbook/pkg/errors"
	httputil "barberbook/pkg/http"
	"barberbook/pkg/logger"
	"barberbook/pkg/middleware"
	"barberbook/pkg/model"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service *dashboard.Service
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewDashboardHandler(service *dashboard.Service, authenticator *middleware.Authenticator, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := dashboard.Filter{
		Query:   query.Get("q"),
		Status:  query.Get("status"),
		Service: query.Get("service"),
		Stylist: query.Get("stylist"),
		From:    query.Get("from"),
		To:      query.Get("to"),
	}

	for name, value := range map[string]string{"from": filter.From, "to": filter.To} {
		if value == "" {
			continue
		}
		if _, ok := dashboard.ParseBookingDay(value); !ok {
			h.writeError(w, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, value)))
			return
		}
	}

	if daysStr := query.Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			h.writeError(w, apperrors.InvalidInput(fmt.Sprintf("invalid days parameter: %s", daysStr)))
			return
		}
		filter.LastDays = days
	}

	d, err := h.service.Build(r.Context(), auth.FromContext(r.Context()), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, d); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/admin/dashboard", h.auth.RequireRole(h.Get, model.RoleAdmin))
}
