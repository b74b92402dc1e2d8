// Пакет middleware — HTTP middleware страниц сайта.
// context.go — токен сессии и текущий участник в контексте запроса.
package middleware

import (
	"context"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	contextKeyToken             contextKey = "ui_token"
	contextKeyMember            contextKey = "ui_member"
	contextKeyMemberUnavailable contextKey = "ui_member_unavailable"
)

// WithToken помещает токен сессии в контекст.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// TokenFromContext возвращает токен сессии ("" если сессии нет).
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}

// WithMember помещает текущего участника в контекст.
func WithMember(ctx context.Context, m *model.Member) context.Context {
	return context.WithValue(ctx, contextKeyMember, m)
}

// MemberFromContext возвращает текущего участника или nil.
func MemberFromContext(ctx context.Context) *model.Member {
	m, _ := ctx.Value(contextKeyMember).(*model.Member)
	return m
}

// memberUnavailable сообщает, что токен есть, но участника не удалось
// загрузить из-за недоступности внешнего API.
func memberUnavailable(ctx context.Context) bool {
	v, _ := ctx.Value(contextKeyMemberUnavailable).(bool)
	return v
}
