package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/admin"
	"portfolio/analytics"
	"portfolio/blog"
	"portfolio/cache"
	"portfolio/common"
	"portfolio/config"
	"portfolio/database"
	"portfolio/site"
	"portfolio/templates"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	common.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	db, err := common.ConnectDb(cfg.SqliteDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	analyticsDB, err := common.ConnectAnalyticsDb(cfg.AnalyticsDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to analytics database")
	}
	analyticsModule := analytics.NewAnalyticsModule(analyticsDB)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), common.RequestLogger())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})
	router.Use(sessions.Sessions("portfolio-session", store))

	if err := templates.Load(router); err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	router.Static("/media", cfg.MediaRoot)
	router.Static("/static", "./static")

	var pageCache *cache.Cache
	if cfg.CacheEnabled() {
		pageCache = cache.New(cfg.CacheDir, cfg.CacheTTL)
		if err := pageCache.ClearOld(); err != nil {
			log.Warn().Err(err).Msg("error removing expired cached pages")
		}
	} else {
		log.Info().Msg("page cache disabled")
	}
	skip := []cache.Skipper{cache.Prefix("/admin", "/media", "/static")}
	if analyticsModule != nil {
		// detail pages record visits, so they must reach their handlers
		skip = append(skip, cache.Pattern(site.ProjectDetailPath), cache.Prefix("/blog/"))
	}
	router.Use(pageCache.Middleware(skip...))

	siteModule := site.NewSiteModule(db, analyticsModule, cfg.Domain)
	siteModule.RegisterRoutes(router)

	blogModule := blog.NewBlogModule(db, analyticsModule)
	blogModule.RegisterRoutes(router)

	adminModule := admin.NewAdminModule(db, analyticsModule, pageCache, admin.Branding{
		SiteHeader: cfg.AdminSiteHeader,
		SiteTitle:  cfg.AdminSiteTitle,
		IndexTitle: cfg.AdminIndexTitle,
	}, cfg.AdminEmail, cfg.AdminPasswordHash)
	adminModule.RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChannel := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		errChannel <- server.ListenAndServe()
	}()
	go listenToInterrupt(errChannel)

	if err := <-errChannel; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Info().Err(err).Msg("closing server")
	}

	shutdownGracefully(server, shutdownTimeout)
	analyticsModule.Wait()
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

func shutdownGracefully(server *http.Server, timeout time.Duration) {
	log.Info().Msg("gracefully shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down the server")
		return
	}
	log.Info().Msg("server gracefully shut down")
}
