package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/config"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/helpers"
	"github.com/showbase/showbase/pkg/mailer"
)

// App-level container sharing constructed singletons across packages so the
// router registry can auto-wire modules.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	hasher     *helpers.PasswordHasher
	notifier   mailer.Notifier
	rabbitPub  *helpers.RabbitPublisher

	userRepo repository.UserRepository
)

func SetConfig(c *config.Config)                { cfg = c }
func GetConfig() *config.Config                 { return cfg }
func SetLogger(l *logrus.Logger)                { logger = l }
func GetLogger() *logrus.Logger                 { return logger }
func SetPGPool(p *pgxpool.Pool)                 { pgPool = p }
func GetPGPool() *pgxpool.Pool                  { return pgPool }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }
func SetGCS(c *storage.Client)                  { gcsClient = c }
func GetGCS() *storage.Client                   { return gcsClient }
func SetJWT(m *helpers.JWTManager)              { jwtManager = m }
func GetJWT() *helpers.JWTManager               { return jwtManager }
func SetHasher(h *helpers.PasswordHasher)       { hasher = h }
func GetHasher() *helpers.PasswordHasher        { return hasher }
func SetNotifier(n mailer.Notifier)             { notifier = n }
func GetNotifier() mailer.Notifier              { return notifier }
func SetRabbitPub(p *helpers.RabbitPublisher)   { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher    { return rabbitPub }
func SetUserRepo(r repository.UserRepository)   { userRepo = r }
func GetUserRepo() repository.UserRepository    { return userRepo }
