package router

import (
	"github.com/oksasatya/rentivu/internal/container"
	handlers "github.com/oksasatya/rentivu/internal/interface/http"
	"github.com/oksasatya/rentivu/internal/router/modules"
)

func buildLimits() modules.Limits {
	cfg := container.GetConfig()
	return modules.Limits{
		RDB:          container.GetRedis(),
		KeyPrefix:    cfg.StoragePrefix,
		AllowPrivate: cfg.RateLimitAllowPrivate,
	}
}

// InitModules registers every feature module with the registry.
// container.SetServices must have been called.
func InitModules(r *Registry) {
	svc := container.GetServices()
	logger := container.GetLogger()
	limits := buildLimits()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, svc.Watcher, logger), limits))
	r.Add(modules.NewRentalModule(handlers.NewRentalHandler(svc.Rentals, svc.Ledger, svc.Booking, svc.Auth, logger)))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limits))
	}
}
