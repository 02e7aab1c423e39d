// Package gateway routes inbound client requests to the backend services.
// The gateway holds no authentication logic: the Authorization header passes
// through untouched and every backend authenticates independently.
package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/config"
	"hrms-platform/internal/response"
)

const pathPrefix = "/api/v1/"

// Route binds a path prefix to a backend service. The table is built once
// at startup and never mutated.
type Route struct {
	Service string
	Prefix  string
	Target  string
}

// Router forwards requests to backend services by longest path prefix
type Router struct {
	routes       []Route
	client       *http.Client
	healthClient *http.Client
	logger       *logrus.Entry
}

// New builds a gateway router from the configured service URL map
func New(cfg *config.Config, logger *logrus.Logger) *Router {
	routes := make([]Route, 0, len(cfg.ServiceURLs))
	for name, target := range cfg.ServiceURLs {
		routes = append(routes, Route{
			Service: name,
			Prefix:  pathPrefix + name,
			Target:  strings.TrimSuffix(target, "/"),
		})
	}
	// Longest prefix first
	sort.Slice(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})

	return &Router{
		routes:       routes,
		client:       &http.Client{Timeout: cfg.UpstreamTimeout},
		healthClient: &http.Client{Timeout: cfg.HealthTimeout},
		logger:       logger.WithField("component", "gateway"),
	}
}

// Proxy returns the catch-all handler that forwards requests to the matched
// backend. The target receives the method, headers, query string and body
// unchanged, with the route prefix stripped; its response is streamed back
// verbatim.
func (r *Router) Proxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, ok := r.match(c.Request.URL.Path)
		if !ok {
			response.Error(c, http.StatusNotFound, "route not found")
			return
		}

		rest := strings.TrimPrefix(c.Request.URL.Path, route.Prefix)
		if rest == "" {
			rest = "/"
		}
		targetURL := route.Target + rest
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
		if err != nil {
			r.logger.WithError(err).Error("failed to build upstream request")
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}
		req.Header = c.Request.Header.Clone()
		// The gateway may have generated the request id; the inbound headers
		// only carry it when the client sent one
		if requestID := c.GetString("request_id"); requestID != "" {
			req.Header.Set("X-Request-ID", requestID)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			// Connection details stay in the log; clients get a generic body
			r.logger.WithFields(logrus.Fields{
				"service": route.Service,
				"target":  targetURL,
			}).WithError(err).Error("upstream request failed")

			status := http.StatusBadGateway
			if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
				status = http.StatusServiceUnavailable
			}
			response.Error(c, status, "service unavailable")
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				c.Writer.Header().Add(key, value)
			}
		}
		c.Writer.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			r.logger.WithError(err).Warn("response stream interrupted")
		}
	}
}

// ServiceHealth is one entry of the health fan-out
type ServiceHealth struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Health fans out lightweight probes to every configured backend and
// reports aggregate status. A single unreachable service degrades its own
// entry, not the whole response.
func (r *Router) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		var mu sync.Mutex
		var wg sync.WaitGroup
		services := make(map[string]ServiceHealth, len(r.routes))

		for _, route := range r.routes {
			wg.Add(1)
			go func(route Route) {
				defer wg.Done()
				entry := ServiceHealth{Status: "healthy", CheckedAt: time.Now().UTC()}

				req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, route.Target+"/health", nil)
				if err == nil {
					resp, err := r.healthClient.Do(req)
					if err != nil || resp.StatusCode != http.StatusOK {
						entry.Status = "unreachable"
						r.logger.WithField("service", route.Service).WithError(err).Warn("health probe failed")
					}
					if resp != nil {
						resp.Body.Close()
					}
				} else {
					entry.Status = "unreachable"
				}

				mu.Lock()
				services[route.Service] = entry
				mu.Unlock()
			}(route)
		}
		wg.Wait()

		aggregate := "healthy"
		for _, entry := range services {
			if entry.Status != "healthy" {
				aggregate = "degraded"
				break
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    aggregate,
			"services":  services,
			"timestamp": time.Now().UTC(),
		})
	}
}

func (r *Router) match(path string) (Route, bool) {
	for _, route := range r.routes {
		if strings.HasPrefix(path, route.Prefix) {
			rest := path[len(route.Prefix):]
			if rest == "" || strings.HasPrefix(rest, "/") {
				return route, true
			}
		}
	}
	return Route{}, false
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
