package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"prostore-backend/dtos"
	"prostore-backend/middleware"
	"prostore-backend/models"
	"prostore-backend/services"
	"prostore-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignInHook runs after a successful sign-in with the request's anonymous
// cart token. Its failure never fails the sign-in.
type SignInHook func(ctx context.Context, sessionCartID string, userID uuid.UUID) error

type AuthHandler struct {
	DB           *gorm.DB
	Carts        *services.CartService
	OnSignIn     SignInHook
	SecureCookie bool
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dtos.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     req.Name,
		Role:     models.RoleUser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		log.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	utils.SendWelcomeEmail(user.Email, user.Name)

	h.startSession(c, http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dtos.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.startSession(c, http.StatusOK, user)
}

// startSession issues the token, moves the anonymous cart over and writes
// the response shared by sign-up and sign-in.
func (h *AuthHandler) startSession(c *gin.Context, status int, user models.User) {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, int(utils.TokenTTL.Seconds()), "/", "", h.SecureCookie, true)

	if sessionCartID := c.GetString(middleware.ContextSessionCart); sessionCartID != "" && h.OnSignIn != nil {
		if err := h.OnSignIn(c.Request.Context(), sessionCartID, user.ID); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("failed to merge session cart on sign-in")
		}
	}

	c.JSON(status, gin.H{
		"token": token,
		"user": dtos.SessionUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session reports who is browsing and how many units sit in their cart, for
// the header's user menu and cart badge.
func (h *AuthHandler) Session(c *gin.Context) {
	resp := dtos.SessionResponse{}

	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			resp.Authenticated = true
			resp.User = &dtos.SessionUser{
				ID:   id,
				Name: c.GetString(middleware.ContextUserName),
				Role: c.GetString(middleware.ContextUserRole),
			}
		}
	}

	if owner, ok := middleware.CartOwner(c); ok && h.Carts != nil {
		cart, err := h.Carts.GetCart(c.Request.Context(), owner)
		if err != nil {
			log.WithError(err).Warn("failed to load cart for session")
		} else {
			resp.CartCount = cart.ItemCount()
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	})
}
