package fakebackend

import (
	"fmt"
	"strings"
	"time"

	"tienda/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cuerpo de la petición inválido",
		})
	}
	if user.Username == "" || user.Email == "" || user.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "username, email y password son obligatorios",
		})
	}

	var existing userRecord
	if err := s.db.Where("username = ? OR email = ?", user.Username, user.Email).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("el usuario '%s' ya existe", user.Username),
		})
	}

	rec := userRecord{Username: user.Username, Email: user.Email, Password: user.Password}
	if err := s.db.Create(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "No se pudo registrar el usuario",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.User{
		ID:       rec.ID,
		Username: rec.Username,
		Email:    rec.Email,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cuerpo de la petición inválido",
		})
	}

	var rec userRecord
	if err := s.db.First(&rec, "username = ?", req.Username).Error; err != nil || rec.Password != req.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Credenciales inválidas",
		})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  rec.ID,
		"username": rec.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "No se pudo generar el token",
		})
	}

	return c.JSON(models.LoginResponse{
		Token: signed,
		User:  models.User{ID: rec.ID, Username: rec.Username, Email: rec.Email},
	})
}

// authRequired rejects requests without a valid HS256 bearer token.
func (s *Server) authRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Se requiere el encabezado Authorization con formato 'Bearer <token>'",
		})
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token inválido o expirado",
		})
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		c.Locals("username", claims["username"])
	}
	return c.Next()
}
