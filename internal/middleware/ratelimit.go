package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/filevault/internal/response"
)

type visitor struct {
	limiter  *time.Ticker
	lastSeen time.Time
}

// rateLimiter 按IP的速率限制器
// 每个限制器实例独立维护自己的访问者表，不同路由组可以使用不同的限额
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	interval time.Duration
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		interval: time.Minute / time.Duration(requestsPerMinute),
	}
	go rl.cleanupVisitors()
	return rl
}

// cleanupVisitors 清理过期访问者
func (rl *rateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				v.limiter.Stop()
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit 速率限制中间件
// 首次访问放行并建立该IP的令牌节奏，之后按固定间隔放行
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	rl := newRateLimiter(requestsPerMinute)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		rl.mu.Lock()

		v, exists := rl.visitors[ip]
		if !exists {
			ticker := time.NewTicker(rl.interval)
			rl.visitors[ip] = &visitor{ticker, time.Now()}
			rl.mu.Unlock()
			c.Next()
			return
		}

		v.lastSeen = time.Now()
		rl.mu.Unlock()

		select {
		case <-v.limiter.C:
			c.Next()
		default:
			response.TooManyRequests(c)
			c.Abort()
		}
	}
}
