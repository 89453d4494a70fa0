package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"festive/internal/domain/carts"
	"festive/internal/domain/reviews"
	"festive/internal/mailer"
	"festive/internal/menu"
	"festive/internal/ratelimiter"
	"festive/internal/whatsapp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type application struct {
	config      config
	logger      *zap.SugaredLogger
	reviews     *reviews.Aggregator
	catalog     *menu.Catalog
	carts       carts.Store
	whatsapp    *whatsapp.Service
	mailer      mailer.Client
	rateLimiter ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	frontendURL string
	reviews     reviewsConfig
	mail        mailConfig
	whatsapp    whatsappConfig
	cart        cartConfig
	rateLimiter ratelimiter.Config
}

type reviewsConfig struct {
	scriptURL       string
	refreshInterval time.Duration
	httpTimeout     time.Duration
}

type mailConfig struct {
	throttle  time.Duration
	fromEmail string
	toEmail   string
	emailJS   emailJSConfig
	smtp      smtpConfig
}

type emailJSConfig struct {
	publicKey  string
	privateKey string
	serviceID  string
	templateID string
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type whatsappConfig struct {
	number string
}

type cartConfig struct {
	ttl           time.Duration
	sweepInterval time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := []string{"https://*", "http://*"}
	if app.config.frontendURL != "" {
		allowedOrigins = []string{app.config.frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.getReviewsHandler)
			r.With(app.RateLimiterMiddleware).Post("/", app.createReviewHandler)
			r.With(app.RateLimiterMiddleware).Post("/refresh", app.refreshReviewsHandler)
		})

		r.Get("/menu", app.getMenuHandler)

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", app.createCartHandler)
			r.Route("/{token}", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Delete("/", app.clearCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Delete("/items/{itemID}", app.removeCartItemHandler)
			})
		})

		r.Post("/inquiries/whatsapp", app.whatsappInquiryHandler)
		r.With(app.RateLimiterMiddleware).Post("/contact", app.contactHandler)
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Implementing graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Infow("shutting down server", "addr", app.config.addr)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	app.startBackgroundJobs(gctx, g)

	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
