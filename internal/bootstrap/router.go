package bootstrap

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/raksha-safety/raksha-backend/internal/api/http"
	apimw "github.com/raksha-safety/raksha-backend/internal/api/http/middleware"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	authhttp "github.com/raksha-safety/raksha-backend/internal/auth/http"
	authmw "github.com/raksha-safety/raksha-backend/internal/auth/middleware"
	authservice "github.com/raksha-safety/raksha-backend/internal/auth/service"
	"github.com/raksha-safety/raksha-backend/internal/metrics"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	soshttp "github.com/raksha-safety/raksha-backend/internal/sos/http"
	sosservice "github.com/raksha-safety/raksha-backend/internal/sos/service"
	usershttp "github.com/raksha-safety/raksha-backend/internal/users/http"
	usersservice "github.com/raksha-safety/raksha-backend/internal/users/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Store          Store
	Identity       auth.IdentityProvider
	Policy         outbound.Policy
	AllowedOrigins []string
	AuthLimiter    *apimw.IPRateLimiter
}

// BuildRouter assembles the API. A nil Gatherer leaves /metrics unregistered and a
// nil AuthLimiter disables rate limiting on /api/auth.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(apimw.Metrics(dep.Metrics))
	r.Use(httpapi.Recovery())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))
	r.NoRoute(httpapi.NotFound)

	r.GET("/", httpapi.RootHandler(dep.Version))
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store).RegisterRoutes(r)
	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	users := dep.Store.Users()

	authService := authservice.NewAuthService(dep.Identity, users, dep.Policy)
	profileService := usersservice.NewProfileService(users, dep.Identity, dep.Policy)
	sosService := sosservice.NewSOSService(dep.Store.SOS(), users, dep.Metrics, dep.Policy)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(apimw.RateLimit(dep.AuthLimiter))
	authhttp.New(authService).Register(authGroup)

	requireUser := authmw.FirebaseAuthMiddleware(dep.Identity, dep.Policy)

	userGroup := api.Group("/user")
	userGroup.Use(requireUser)
	usershttp.New(profileService).Register(userGroup)

	sosGroup := api.Group("/sos")
	sosGroup.Use(requireUser)
	soshttp.New(sosService).Register(sosGroup)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", apimw.HeaderRequestID},
		ExposeHeaders: []string{apimw.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
