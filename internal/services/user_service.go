package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homeinsight-listings/internal/auth"
	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/validators"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo      repositories.UserRepository
	validator validators.UserValidator
	issuer    *auth.Issuer
	cost      int
}

func NewUserService(repo repositories.UserRepository, validator validators.UserValidator, issuer *auth.Issuer) *UserService {
	return &UserService{
		repo:      repo,
		validator: validator,
		issuer:    issuer,
		cost:      bcrypt.DefaultCost,
	}
}

func (s *UserService) Register(ctx context.Context, user *models.User) (*auth.TokenDetails, error) {
	if err := s.validator.ValidateRegister(user); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return nil, fmt.Errorf("register %s: %w", user.Email, apperrors.ErrEmailTaken)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.ID = primitive.NewObjectID()
	user.Password = string(hashedPassword)
	user.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issuer.GenerateJWT(user.ID.Hex(), user.FullName, user.Email)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*auth.TokenDetails, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validator.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	}
	return s.issuer.GenerateJWT(user.ID.Hex(), user.FullName, user.Email)
}
