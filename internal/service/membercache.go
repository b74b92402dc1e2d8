// Пакет service — прикладная логика сайта поверх внешнего API.
// MemberCache — кэш участников по токену сессии с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nirudef/aoka-web/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	memberCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aoka_member_cache_hits_total",
		Help: "Общее количество попаданий в кэш участников.",
	})
	memberCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aoka_member_cache_misses_total",
		Help: "Общее количество промахов кэша участников.",
	})
)

// MemberCache — кэш «токен → участник».
// Запись живёт не дольше ttl; кэш локален для процесса.
// Устаревание в пределах ttl допустимо: изменения ролей в API
// видны не позже чем через ttl или сразу после Invalidate.
type MemberCache struct {
	cache *expirable.LRU[string, *model.Member]
	ttl   time.Duration
}

// NewMemberCache создаёт кэш с указанным максимальным размером и TTL.
func NewMemberCache(maxSize int, ttl time.Duration) *MemberCache {
	return &MemberCache{
		cache: expirable.NewLRU[string, *model.Member](maxSize, nil, ttl),
		ttl:   ttl,
	}
}

// TTL возвращает окно валидности записи.
func (c *MemberCache) TTL() time.Duration {
	return c.ttl
}

// Get возвращает участника по токену.
func (c *MemberCache) Get(token string) (*model.Member, bool) {
	val, ok := c.cache.Get(token)
	if ok {
		memberCacheHitsTotal.Inc()
		return val, true
	}
	memberCacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись.
func (c *MemberCache) Set(token string, m *model.Member) {
	c.cache.Add(token, m)
}

// Invalidate удаляет запись токена (выход, изменение своего профиля,
// отказ API).
func (c *MemberCache) Invalidate(token string) {
	c.cache.Remove(token)
}

// Len возвращает количество записей.
func (c *MemberCache) Len() int {
	return c.cache.Len()
}
