package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"GeorgianJoker/config"
)

type LoginRequest struct {
	Name string `json:"name"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Login issues a guest identity: a fresh player id plus a signed token. The
// client keeps the token across reconnects so the seat survives a dropped
// socket.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "bad request"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 32 {
		c.JSON(400, gin.H{"error": "name must be 1-32 characters"})
		return
	}

	playerID := uuid.NewString()
	jwtStr, err := issueToken(playerID, name)
	if err != nil {
		c.JSON(500, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(200, gin.H{
		"jwt":      jwtStr,
		"playerId": playerID,
		"name":     name,
	})
}

// Refresh re-issues a token for an already-authenticated player (the JWT
// middleware runs before this handler).
func (h *Handler) Refresh(c *gin.Context) {
	playerID := c.GetString("playerId")
	name := c.GetString("playerName")

	jwtStr, err := issueToken(playerID, name)
	if err != nil {
		c.JSON(500, gin.H{"error": "jwt generation failed"})
		return
	}
	c.JSON(200, gin.H{"jwt": jwtStr, "playerId": playerID, "name": name})
}

func issueToken(playerID, name string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.C.JWT.Secret))
}
