// handlers/auth.go
package handlers

import (
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/middleware"
	"skaila/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	School      string `json:"school"`
	Class       string `json:"class"`
	Year        int    `json:"year"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	User    UserInfo `json:"user,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type UserInfo struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	School      string    `json:"school"`
	Class       string    `json:"class"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"created_at"`
}

// Login authenticates a registered user
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Username and password required",
		})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Database not available",
		})
	}

	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
	}

	if user.IsBanned {
		return c.Status(403).JSON(AuthResponse{
			Success: false,
			Error:   "Account suspended",
		})
	}

	// Update last login
	db.Model(&user).Update("last_login", time.Now())

	// Generate JWT token
	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    userInfo(user),
	})
}

// Register creates a new student account. Teacher and admin accounts
// are provisioned by an admin, never self-registered.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	// Validate input
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Username and password required",
		})
	}

	if len(req.Password) < 6 {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Password must be at least 6 characters",
		})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Database not available",
		})
	}

	// Check if username already exists
	var existingUser models.User
	if err := db.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Error:   "Username already taken",
		})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to hash password",
		})
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := models.User{
		Username:    req.Username,
		Email:       &req.Email,
		Password:    string(hashedPassword),
		DisplayName: displayName,
		Role:        "student",
		School:      req.School,
		Class:       req.Class,
		Year:        req.Year,
		CreatedAt:   time.Now(),
	}

	if err := db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to create account",
		})
	}

	// Generate JWT token
	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Error:   "Failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    userInfo(user),
	})
}

// Me returns the authenticated user's profile.
func Me(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(*user),
	})
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	Avatar         *string `json:"avatar"`
	Bio            *string `json:"bio"`
	DifficultyPref *string `json:"difficulty_pref"`
}

// UpdateProfile applies partial profile edits for the current user.
func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.DifficultyPref != nil {
		switch *req.DifficultyPref {
		case "basic", "standard", "advanced":
			updates["difficulty_pref"] = *req.DifficultyPref
		default:
			return c.Status(400).JSON(fiber.Map{"error": "Invalid difficulty preference"})
		}
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Nothing to update"})
	}
	updates["updated_at"] = time.Now()

	db := database.GetDB()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	var user models.User
	db.First(&user, userID)
	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(user),
	})
}

// Helper functions

func userInfo(user models.User) UserInfo {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		School:      user.School,
		Class:       user.Class,
		Year:        user.Year,
		CreatedAt:   user.CreatedAt,
	}
}

func generateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour * 720).Unix(), // 30 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret()))
}
