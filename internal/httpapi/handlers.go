package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/store"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

// MaxNotificationLimit caps the limit query parameter.
const MaxNotificationLimit = 200

type forecastResponse struct {
	OK                bool            `json:"ok"`
	ProductID         int64           `json:"product_id"`
	Status            forecast.Status `json:"status"`
	SellOutHours      float64         `json:"sell_out_hours"`
	Message           string          `json:"message"`
	NextRestockAt     *time.Time      `json:"next_restock_at,omitempty"`
	HoursUntilRestock *float64        `json:"hours_until_restock,omitempty"`
	RequestID         string          `json:"request_id,omitempty"`
}

type notificationsResponse struct {
	OK            bool                     `json:"ok"`
	Notifications []inventory.Notification `json:"notifications"`
}

type createNotificationRequest struct {
	UserID      int64   `json:"user_id"`
	Message     string  `json:"message"`
	ProductID   *int64  `json:"product_id,omitempty"`
	ProductName *string `json:"product_name,omitempty"`
}

type createNotificationResponse struct {
	OK bool  `json:"ok"`
	ID int64 `json:"id"`
}

type consumeRequest struct {
	Qty int `json:"qty"`
}

type consumeResponse struct {
	OK           bool  `json:"ok"`
	ProductID    int64 `json:"product_id"`
	RemainingQty int   `json:"remaining_qty"`
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) getForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	res, err := s.forecaster.Forecast(r.Context(), id)
	resp := forecastResponse{
		OK:           err == nil,
		ProductID:    id,
		Status:       res.Status,
		SellOutHours: res.Hours,
		Message:      res.Message(),
	}
	if err != nil {
		reqID := RequestIDFromContext(r.Context())
		slog.Error("forecast failed", "product_id", id, "request_id", reqID, "error", err)
		resp.Status = forecast.StatusFailed
		resp.SellOutHours = forecast.HoursFailed
		resp.Message = fmt.Sprintf("forecast failed: %v", err)
		resp.RequestID = reqID
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	if res.Status == forecast.StatusDepleted {
		now := s.now()
		if at, _, ok := s.schedule.Next(now); ok {
			hours := math.Round(at.Sub(now).Hours()*10) / 10
			resp.NextRestockAt = &at
			resp.HoursUntilRestock = &hours
			resp.Message = fmt.Sprintf("out of stock, next restock at %s", at.Format("15:04"))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID := inventory.SystemUserID
	if v := q.Get("user_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid_user_id", err.Error())
			return
		}
		userID = n
	}

	limit := store.DefaultNotificationLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, MaxNotificationLimit)
	}

	notes, err := s.store.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		slog.Error("list notifications", "user_id", userID, "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, notificationsResponse{OK: true, Notifications: notes})
}

func (s *Server) postNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Message == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "message is required")
		return
	}

	id, err := s.store.InsertNotification(r.Context(), inventory.Notification{
		UserID:      req.UserID,
		Message:     req.Message,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createNotificationResponse{OK: true, ID: id})
}

func (s *Server) consumeStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	var req consumeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Qty < 1 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "qty must be >= 1")
		return
	}

	left, err := s.store.ConsumeStock(r.Context(), id, req.Qty)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, consumeResponse{OK: true, ProductID: id, RemainingQty: left})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeStoreError maps store and gate errors to status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		WriteJSONError(w, http.StatusNotFound, "product_not_found", "")
	case errors.Is(err, writegate.ErrBusy):
		w.Header().Set("Retry-After", "1")
		WriteJSONError(w, http.StatusServiceUnavailable, "busy", "write in progress, retry")
	default:
		slog.Error("store write failed",
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
