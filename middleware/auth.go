// middleware/auth.go
package middleware

import (
	"strings"
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	c.Locals("role", claims["role"])

	return c.Next()
}

// RequireRole gates a route group to the given roles. Admin passes
// everywhere.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "admin" {
			return c.Next()
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
	}
}

func AdminAuthMiddleware(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	role, _ := claims["role"].(string)
	if role != "admin" {
		return c.Status(403).JSON(fiber.Map{"error": "Access denied. Admin privileges required."})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	c.Locals("role", role)

	return c.Next()
}

// WebSocketAuthMiddleware validates JWT for WebSocket connections.
// Supports both Authorization header and cookies; rejects anonymous
// connections since notifications are always user-scoped.
func WebSocketAuthMiddleware(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}
	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Missing token"})
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("username", claims["username"])
	c.Locals("role", claims["role"])

	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return []byte(config.JWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(401, "Invalid token claims")
	}
	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fiber.NewError(401, "Token expired")
	}
	return claims, nil
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return 0, fiber.NewError(401, "User not authenticated")
	}

	if id, ok := userID.(float64); ok {
		return uint(id), nil
	}

	if id, ok := userID.(uint); ok {
		return id, nil
	}

	return 0, fiber.NewError(401, "Invalid user ID format")
}

func GetUsername(c *fiber.Ctx) (string, error) {
	username := c.Locals("username")
	if username == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}

	if name, ok := username.(string); ok {
		return name, nil
	}

	return "", fiber.NewError(401, "Invalid username format")
}

// GetRole returns the authenticated user's role, empty when missing.
func GetRole(c *fiber.Ctx) string {
	if role, ok := c.Locals("role").(string); ok {
		return role
	}
	return ""
}

// GetUser loads the full user row for the authenticated request.
func GetUser(c *fiber.Ctx) (*models.User, error) {
	id, err := GetUserID(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		return nil, fiber.NewError(401, "User not found")
	}
	return &user, nil
}
