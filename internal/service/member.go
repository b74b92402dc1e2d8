package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nirudef/aoka-web/internal/backend"
	"github.com/nirudef/aoka-web/internal/domain/model"
)

// ErrNoSession — токен отсутствует или отвергнут внешним API.
var ErrNoSession = errors.New("нет активной сессии")

// MemberAPI — операции внешнего API, нужные MemberService.
type MemberAPI interface {
	Me(ctx context.Context, token string) (*model.Member, error)
	SignIn(ctx context.Context, creds backend.Credentials) (*backend.SignInResult, error)
	SignOut(ctx context.Context, token string) error
}

// MemberService — текущий участник и жизненный цикл сессии.
type MemberService struct {
	api    MemberAPI
	cache  *MemberCache
	logger *slog.Logger
}

// NewMemberService создаёт сервис.
func NewMemberService(api MemberAPI, cache *MemberCache, logger *slog.Logger) *MemberService {
	return &MemberService{
		api:    api,
		cache:  cache,
		logger: logger.With(slog.String("component", "member_service")),
	}
}

// Current возвращает участника по токену через кэш.
// Явный отказ 401/403 сбрасывает запись и возвращает ErrNoSession;
// другие ошибки API и транспорта возвращаются как есть.
func (s *MemberService) Current(ctx context.Context, token string) (*model.Member, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	if m, ok := s.cache.Get(token); ok {
		return m, nil
	}

	m, err := s.api.Me(ctx, token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			s.cache.Invalidate(token)
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("загрузка участника: %w", err)
	}

	s.cache.Set(token, m)
	return m, nil
}

// Verify проверяет токен во внешнем API в обход кэша.
// Возвращает nil при успехе, *backend.APIError при отказе
// или ошибку транспорта, если API недоступен.
func (s *MemberService) Verify(ctx context.Context, token string) error {
	_, err := s.api.Me(ctx, token)
	return err
}

// Login создаёт сессию во внешнем API.
func (s *MemberService) Login(ctx context.Context, email, password string) (*backend.SignInResult, error) {
	res, err := s.api.SignIn(ctx, backend.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Вход выполнен", slog.String("email", email))
	return res, nil
}

// Logout сбрасывает кэш и завершает сессию во внешнем API.
// Ошибка API только логируется: локальный выход выполняется в любом случае.
func (s *MemberService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.cache.Invalidate(token)
	if err := s.api.SignOut(ctx, token); err != nil {
		s.logger.Warn("Не удалось завершить сессию во внешнем API",
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate сбрасывает кэш участника (например, после изменения своего профиля).
func (s *MemberService) Invalidate(token string) {
	s.cache.Invalidate(token)
}
