package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
)

type IAuthService interface {
	// Authenticate validates a bearer token and resolves it to an existing user.
	Authenticate(ctx context.Context, rawToken string) (*entity.Identity, error)
	IssueToken(userId int64, scopes []string, ttl time.Duration) (string, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	secret     []byte
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, secret string) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		secret:     []byte(secret),
	}
}

var errCredentials = apperror.Unauthorized("Could not validate credentials")

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*entity.Identity, error) {
	if rawToken == "" || len(s.secret) == 0 {
		return nil, errCredentials
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "Could not validate credentials", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errCredentials
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errCredentials
	}
	userId, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, errCredentials
	}

	scopes, ok := parseScopes(claims["scopes"])
	if !ok {
		return nil, errCredentials
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errCredentials
	}

	return &entity.Identity{UserId: userId, Scopes: scopes}, nil
}

// parseScopes accepts either a JSON list or a space separated string. A missing claim is rejected.
func parseScopes(raw interface{}) ([]string, bool) {
	switch v := raw.(type) {
	case []interface{}:
		scopes := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			scopes = append(scopes, s)
		}
		return scopes, true
	case []string:
		return v, true
	case string:
		return strings.Fields(v), true
	default:
		return nil, false
	}
}

func (s *authService) IssueToken(userId int64, scopes []string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    strconv.FormatInt(userId, 10),
		"scopes": scopes,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
