package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

const (
	flashCookieName = "trip_flash"
	flashMaxAge     = 60
)

func setFlash(c *gin.Context, notices []domain.Notice) {
	if len(notices) == 0 {
		return
	}

	data, err := json.Marshal(notices)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Encoding flash notices", logger.Err(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, string(data), flashMaxAge, "/", "", false, true)
}

// takeFlash returns the notices left by the previous action and clears them.
func takeFlash(c *gin.Context) []domain.Notice {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	var notices []domain.Notice
	if err := json.Unmarshal([]byte(raw), &notices); err != nil {
		slog.WarnContext(c.Request.Context(), "Dropping malformed flash cookie", logger.Err(err))
		return nil
	}
	return notices
}
