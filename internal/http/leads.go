package http

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/summitops/event-pay-gateway/internal/metrics"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/service/capture"
	"github.com/summitops/event-pay-gateway/internal/validation"
)

type leadReq struct {
	EventID     string `json:"event_id"`
	SessionID   string `json:"user_session_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMTerm     string `json:"utm_term"`
	UTMContent  string `json:"utm_content"`
}

func captureLeadHandler(svc *capture.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req leadReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		// Normalize
		req.FullName = strings.TrimSpace(req.FullName)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Phone = strings.TrimSpace(req.Phone)

		// Basic validation: the lead form asks far less than checkout does.
		if req.FullName == "" || req.Email == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "full_name and email are required"})
		}
		if !validation.ValidEmail(req.Email) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		}
		if req.Phone != "" && !validation.ValidPhone(req.Phone) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid phone number"})
		}

		id, err := svc.Capture(c.Request().Context(), model.Contact{
			EventID:     strings.TrimSpace(req.EventID),
			SessionID:   strings.TrimSpace(req.SessionID),
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			UTMSource:   strings.TrimSpace(req.UTMSource),
			UTMMedium:   strings.TrimSpace(req.UTMMedium),
			UTMCampaign: strings.TrimSpace(req.UTMCampaign),
			UTMTerm:     strings.TrimSpace(req.UTMTerm),
			UTMContent:  strings.TrimSpace(req.UTMContent),
		})
		if err != nil {
			log.Errorf("lead capture failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		metrics.LeadsTotal.WithLabelValues("captured").Inc()

		return c.JSON(http.StatusAccepted, map[string]any{
			"captured": true,
			"id":       id,
		})
	}
}
