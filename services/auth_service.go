package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	DB     *gorm.DB
	Tokens *utils.TokenManager
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Register creates a non-admin customer account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return models.Customer{}, invalid("email", "Email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Customer{}, invalid("email", "Email address is invalid")
	}
	if len(in.Password) < minPasswordLength {
		return models.Customer{}, invalid("password", "Password must be at least 8 characters")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.Customer{}, err
	}
	if count > 0 {
		return models.Customer{}, newError(ErrConflict, "An account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Customer{}, err
	}

	customer := models.Customer{
		Email:    email,
		Password: string(hashed),
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.DB.WithContext(ctx).Create(&customer).Error; err != nil {
		return models.Customer{}, err
	}

	utils.InfoLogger.Printf("New customer registered: %s", customer.Email)
	return customer, nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", models.Customer{}, invalid("email", "Email and password are required")
	}

	var customer models.Customer
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", models.Customer{}, newError(ErrUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return "", models.Customer{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(password)); err != nil {
		return "", models.Customer{}, newError(ErrUnauthorized, "Invalid email or password")
	}

	token, err := s.Tokens.GenerateToken(customer.ID)
	if err != nil {
		return "", models.Customer{}, err
	}
	return token, customer, nil
}

// Logout revokes token.
func (s *AuthService) Logout(token string) {
	s.Tokens.Blacklist(token)
}

func (s *AuthService) Customer(ctx context.Context, id uint) (models.Customer, error) {
	var customer models.Customer
	if err := s.DB.WithContext(ctx).First(&customer, id).Error; err != nil {
		return models.Customer{}, notFound(err, "customer")
	}
	return customer, nil
}

// IsAdmin reads the is_admin column of the customer row.
func (s *AuthService) IsAdmin(ctx context.Context, id uint) (bool, error) {
	customer, err := s.Customer(ctx, id)
	if err != nil {
		return false, err
	}
	return customer.IsAdmin, nil
}

type ProfileInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (models.Customer, error) {
	customer, err := s.Customer(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return models.Customer{}, invalid("full_name", "Full name is required")
	}

	customer.FullName = strings.TrimSpace(in.FullName)
	customer.Phone = strings.TrimSpace(in.Phone)
	if err := s.DB.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
		"full_name": customer.FullName,
		"phone":     customer.Phone,
	}).Error; err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}
