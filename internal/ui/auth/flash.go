// flash.go — одноразовые сообщения между POST и последующим GET.
// Сообщение может содержать сгенерированный пароль, поэтому шифруется
// тем же ключом, что и сессия.
package auth

import (
	"net/http"
)

// FlashCookieName — имя cookie одноразового сообщения.
const FlashCookieName = "aoka_flash"

// Виды сообщений.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash — одноразовое сообщение.
type Flash struct {
	Kind string `json:"kind"`
	// Key — ключ каталога переводов.
	Key string `json:"key"`
	// Extra — дополнительное значение (например, сгенерированный пароль).
	Extra string `json:"extra,omitempty"`
}

// SetFlash сохраняет сообщение до следующего запроса.
func (sm *SessionManager) SetFlash(w http.ResponseWriter, f Flash) error {
	encrypted, err := sm.seal(f)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PopFlash возвращает сообщение и удаляет его cookie.
// Повреждённый cookie удаляется и игнорируется.
func (sm *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var f Flash
	if err := sm.open(cookie.Value, &f); err != nil {
		return nil
	}
	return &f
}
