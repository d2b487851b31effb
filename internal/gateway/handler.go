package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"wavechat/internal/transport/httpdto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenParser authenticates the socket handshake and yields the user id.
type TokenParser interface {
	ParseAccessToken(token string) (string, error)
}

// TokenParserFunc adapts a plain function to TokenParser.
type TokenParserFunc func(token string) (string, error)

func (f TokenParserFunc) ParseAccessToken(token string) (string, error) {
	return f(token)
}

// Handler upgrades HTTP requests to socket connections
type Handler struct {
	hub    *Hub
	tokens TokenParser
	logger *GatewayLogger
}

// NewHandler creates a new socket handler
func NewHandler(hub *Hub, tokens TokenParser) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		logger: NewGatewayLogger(),
	}
}

// Handle upgrades HTTP to a socket connection
func (h *Handler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("missing token", "UNAUTHORIZED"))
		return
	}

	userID, err := h.tokens.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("socket upgrade failed", userID, "", err)
		return
	}

	client := NewClient(h.hub, conn, userID, h.logger)
	h.hub.register <- client
}

func (h *Handler) extractToken(c *gin.Context) string {
	// Check query parameter
	token := c.Query("token")
	if token != "" {
		return token
	}

	// Check Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
