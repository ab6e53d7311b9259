package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/prioboard/prioboard-backend/internal/api/http"
	"github.com/prioboard/prioboard-backend/internal/api/http/middleware"
	"github.com/prioboard/prioboard-backend/internal/events"
	trackerhttp "github.com/prioboard/prioboard-backend/internal/tracker/http"
	"github.com/prioboard/prioboard-backend/internal/tracker/service"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	AllowOrigins []string
	DB           *pgxpool.Pool // nil when running on the in-memory store
	Redis        *redis.Client
	Service      *service.TrackerService
	Broadcaster  *events.Broadcaster
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowOrigins) == 1 && dep.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowOrigins
	}
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.RequestIDMiddleware())
	api.Use(middleware.RateLimitMiddleware(20, 40))

	trackerHandler := trackerhttp.NewHandler(dep.Service, dep.Broadcaster)
	trackerHandler.Register(api)

	return r
}
