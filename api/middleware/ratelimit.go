package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anoixa/photo-manager/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按客户端 IP 的令牌桶限流
// 长时间不活跃的客户端由后台协程定期回收
type IPRateLimiter struct {
	rps    float64
	burst  int
	maxAge time.Duration

	mu      sync.Mutex
	clients map[string]*client

	stop chan struct{}
}

// NewIPRateLimiter 创建按 IP 的限流器并启动回收协程
func NewIPRateLimiter(rps float64, burst int, maxAge time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		rps:     rps,
		burst:   burst,
		maxAge:  maxAge,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}

	go rl.reap()

	return rl
}

// Middleware 返回 gin 中间件
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(clientIP(c)) {
			common.RespondError(c, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

// StopCleanup 停止后台回收
func (rl *IPRateLimiter) StopCleanup() {
	close(rl.stop)
}

func (rl *IPRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

func (rl *IPRateLimiter) reap() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, cl := range rl.clients {
				if time.Since(cl.lastSeen) > rl.maxAge {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// clientIP 优先取代理转发头中的真实 IP
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
