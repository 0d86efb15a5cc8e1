package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/repository"
)

func listLeadsHandler(chRepo repository.CHLeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var st model.LeadStatus
		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			if tmp, ok := model.ParseLeadStatus(raw); ok {
				st = tmp
			}
		}

		email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))

		leads, err := chRepo.List(c.Request().Context(), email, st, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(leads),
			"results": leads,
		})
	}
}
