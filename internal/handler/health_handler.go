package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc проверяет доступность зависимости
type PingFunc func(ctx context.Context) error

// HealthHandler отвечает на проверки живости
type HealthHandler struct {
	checks map[string]PingFunc
}

// NewHealthHandler создает обработчик с именованными проверками
func NewHealthHandler(checks map[string]PingFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health возвращает 200, если все проверки прошли, иначе 503 с перечнем упавших
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			log.Printf("[HealthHandler] %s check failed: %v", name, err)
			result[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}

	if status == http.StatusOK {
		result["status"] = "ok"
	} else {
		result["status"] = "degraded"
	}
	c.JSON(status, result)
}
