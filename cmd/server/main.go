package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/config"
	"github.com/iliyamo/event-planner/internal/database"
	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/metrics"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/router"
	"github.com/iliyamo/event-planner/internal/schedule"
	"github.com/iliyamo/event-planner/internal/service"
	"github.com/iliyamo/event-planner/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := database.RunMigrations(database.MigrateURL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unavailable; middleware degrades
	stats := metrics.NewCollector()

	users := repository.NewUserRepo(db)
	groups := repository.NewGroupRepo(db)
	events := repository.NewEventRepo(db)
	tags := repository.NewTagRepo(db)
	txRunner := repository.NewSQLTxRunner(db)

	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	publisher := queue.NewPublisher(cfg.RabbitURL)

	authSvc := service.NewAuthService(users, groups, txRunner, codec, publisher, stats, cfg.BcryptCost)
	eventSvc := service.NewEventService(events, groups, users, txRunner, schedule.NewValidator(events), stats)
	groupSvc := service.NewGroupService(groups, txRunner)
	tagSvc := service.NewTagService(tags)

	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartActivationConsumer(cfg.RabbitURL, users); err != nil {
				log.Printf("activation consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:    handler.NewAuthHandler(authSvc),
		Events:  handler.NewEventHandler(eventSvc),
		Groups:  handler.NewGroupHandler(groupSvc),
		Tags:    handler.NewTagHandler(tagSvc),
		AuthSvc: authSvc,
		Stats:   stats,
		Redis:   rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
