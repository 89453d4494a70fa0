package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"festive/internal/domain/carts"
	"festive/internal/domain/reviews"
	"festive/internal/mailer"
	"festive/internal/menu"
	"festive/internal/ratelimiter"
	"festive/internal/sheets"
	"festive/internal/whatsapp"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            5 * time.Second,
		Enabled:              envBool("RATE_LIMITER_ENABLED", true),
	}
}

func envString(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return def
}

func envInt(key string, def int) int {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsedVal, err := strconv.Atoi(val)
	if err != nil {
		fmt.Println("Invalid", key, "defaulting to", def)
		return def
	}
	return parsedVal
}

func envBool(key string, def bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsedVal, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Println("Invalid", key, "defaulting to", def)
		return def
	}
	return parsedVal
}

func envDuration(key string, def time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsedVal, err := time.ParseDuration(val)
	if err != nil {
		fmt.Println("Invalid", key, "defaulting to", def)
		return def
	}
	return parsedVal
}

func loadConfig() config {
	return config{
		addr:        envString("ADDR", ":8080"),
		env:         envString("ENV", "development"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		reviews: reviewsConfig{
			scriptURL:       os.Getenv("GOOGLE_SCRIPT_URL"),
			refreshInterval: envDuration("REVIEWS_REFRESH_INTERVAL", 0),
			httpTimeout:     envDuration("REVIEWS_HTTP_TIMEOUT", 10*time.Second),
		},
		mail: mailConfig{
			throttle: envDuration("CONTACT_THROTTLE", 10*time.Second),
			emailJS: emailJSConfig{
				publicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
				privateKey: os.Getenv("EMAILJS_PRIVATE_KEY"),
				serviceID:  os.Getenv("EMAILJS_SERVICE_ID"),
				templateID: os.Getenv("EMAILJS_TEMPLATE_ID"),
			},
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     envInt("SMTP_PORT", 587),
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
			fromEmail: os.Getenv("MAIL_FROM"),
			toEmail:   os.Getenv("MAIL_TO"),
		},
		whatsapp: whatsappConfig{
			number: envString("WHATSAPP_NUMBER", whatsapp.DefaultNumber),
		},
		cart: cartConfig{
			ttl:           envDuration("CART_TTL", 24*time.Hour),
			sweepInterval: 10 * time.Minute,
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	// Configure the encoder to be a console encoder with color
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), lvl)

	return zap.New(core).Sugar(), nil
}

// newMailer picks the contact transport from what is configured: EmailJS,
// SMTP, or EmailJS falling back to SMTP. The result is throttled per sender.
func newMailer(cfg mailConfig, logger *zap.SugaredLogger) (mailer.Client, error) {
	var primary, secondary mailer.Client

	if cfg.emailJS.publicKey != "" {
		c, err := mailer.NewEmailJSClient(cfg.emailJS.publicKey, cfg.emailJS.privateKey, cfg.emailJS.serviceID, cfg.emailJS.templateID)
		if err != nil {
			return nil, err
		}
		primary = c
	}
	if cfg.smtp.host != "" {
		c, err := mailer.NewSMTPClient(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.fromEmail, cfg.toEmail)
		if err != nil {
			return nil, err
		}
		secondary = c
	}

	var client mailer.Client
	switch {
	case primary != nil && secondary != nil:
		client = mailer.NewFallback(primary, secondary, logger)
	case primary != nil:
		client = primary
	case secondary != nil:
		client = secondary
	default:
		return nil, nil
	}
	return mailer.NewThrottled(client, cfg.throttle), nil
}

var version = "1.0.0"

//	@title			Festive Catering API
//	@description	Reviews, menu, cart and inquiry endpoints for the catering site.

//	@BasePath	/v1

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()

	logger, err := NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// review store
	sheetsClient := sheets.NewClient(cfg.reviews.scriptURL, cfg.reviews.httpTimeout, logger)
	if !sheetsClient.Configured() {
		logger.Warn("GOOGLE_SCRIPT_URL is not set, serving built-in reviews")
	}
	agg := reviews.NewAggregator(sheetsClient, logger)
	defer agg.Close()

	catalog, err := menu.Load()
	if err != nil {
		logger.Fatal(err)
	}

	mail, err := newMailer(cfg.mail, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if mail == nil {
		logger.Warn("no email transport configured, contact form is disabled")
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	app := &application{
		config:      cfg,
		logger:      logger,
		reviews:     agg,
		catalog:     catalog,
		carts:       carts.NewRepositoryWithTTL(catalog, cfg.cart.ttl, logger),
		whatsapp:    whatsapp.New(cfg.whatsapp.number),
		mailer:      mail,
		rateLimiter: rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	publishReviewMetrics(agg, sheetsClient)

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Errorw("server error", "error", err)
	}
}

// publishReviewMetrics exposes the review collection under the "reviews"
// expvar, kept current through an aggregator subscription.
func publishReviewMetrics(agg *reviews.Aggregator, client *sheets.Client) {
	m := expvar.NewMap("reviews")
	count := new(expvar.Int)
	ver := new(expvar.Int)
	refreshes := new(expvar.Int)
	m.Set("count", count)
	m.Set("version", ver)
	m.Set("refreshes", refreshes)
	m.Set("fallbacks", expvar.Func(func() any { return client.Fallbacks() }))
	m.Set("fetches", expvar.Func(func() any { return client.Fetches() }))

	agg.Subscribe(func(s reviews.Snapshot) {
		if s.Loading {
			return
		}
		refreshes.Add(1)
		count.Set(int64(len(s.Reviews)))
		ver.Set(int64(s.Version))
	})
}
