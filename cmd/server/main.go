package main // Entry point package

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/config"
	"github.com/iliyamo/title-review-api/internal/database"
	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/mailer"
	"github.com/iliyamo/title-review-api/internal/middleware"
	"github.com/iliyamo/title-review-api/internal/queue"
	"github.com/iliyamo/title-review-api/internal/repository"
	"github.com/iliyamo/title-review-api/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; nil disables response caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	// Confirmation emails flow through RabbitMQ; the consumer degrades to
	// logging codes when SMTP is not configured.
	m := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})
	go func() {
		if err := queue.StartEmailConsumer(m); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	genres := repository.NewGenreRepo(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	usersH := handler.NewUserAdminHandler(users)
	catH := handler.NewCategoryHandler(categories)
	genH := handler.NewGenreHandler(genres)
	titH := handler.NewTitleHandler(titles, categories, genres)
	revH := handler.NewReviewHandler(reviews, titles)
	comH := handler.NewCommentHandler(comments, reviews)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catH, genH, titH, revH, comH, cfg.JWTSecret, cacheMW)
	router.RegisterFeedback(e, revH, comH, cfg.JWTSecret)
	router.RegisterAdmin(e, usersH, catH, genH, titH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
