package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shadow-TermDev/whats-links-backend/internal/config"
	"github.com/Shadow-TermDev/whats-links-backend/internal/services"
	"github.com/Shadow-TermDev/whats-links-backend/internal/token"
)

type Handler struct {
	cfg       config.Config
	logger    *slog.Logger
	directory *services.DirectoryService
	tokens    *token.Manager
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	directory *services.DirectoryService,
	tokens *token.Manager,
) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		directory: directory,
		tokens:    tokens,
	}
}

// renderError translates the service error taxonomy into status codes.
// Storage failures get a generic body; the details only go to the log.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.KindAuth:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case services.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("internal error",
			"error", err,
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDKey),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
