package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/config"
	"github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	store       repository.Storage
	rentalCat   repository.RentalCatalog
	rabbitPub   *helpers.RabbitPublisher
	services    *Services
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		return helpers.NopLogger()
	}
	return logger
}
func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

// SetRedis registers the client used by the rate limiter; it may be nil with
// non-Redis storage, which disables limiting.
func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetStorage(s repository.Storage)         { store = s }
func GetStorage() repository.Storage          { return store }
func SetCatalog(c repository.RentalCatalog)   { rentalCat = c }
func GetCatalog() repository.RentalCatalog    { return rentalCat }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetServices(s *Services)                 { services = s }
func GetServices() *Services                  { return services }
