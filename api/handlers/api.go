package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/cache"
	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/notifications"
	"github.com/linesmerrill/case-diary-api/storage"
	"github.com/linesmerrill/case-diary-api/users"
	"github.com/linesmerrill/case-diary-api/validation"
)

const mailFromName = "Case Diary"

// App stores the router, db connection and the services built on it, so they can be
// reused by the server and the command line
type App struct {
	Router *mux.Router
	Config config.Config

	Cases    *cases.Repository
	History  *cases.HistoryService
	Accounts *users.Accounts
	Teams    databases.TeamDatabase
	Files    *storage.Service
	Mailer   notifications.Mailer
	Clock    *diary.Clock
	Metrics  *api.MetricsCollector
	Auth     *api.Auth

	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
	redis    *cache.RedisCache
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Clock == nil {
		a.Clock = diary.NewClock(a.Config.Timezone)
	}
	if a.Metrics == nil {
		a.Metrics = api.NewMetricsCollector(1000)
	}
	if a.Auth == nil {
		a.Auth = api.NewAuth(context.Background(), a.Accounts)
	}
	v := validation.New()

	r := mux.NewRouter()
	r.Use(a.Metrics.Middleware)

	c := Case{Repo: a.Cases, Clock: a.Clock}
	h := History{Service: a.History, Clock: a.Clock}
	d := Dashboard{Repo: a.Cases, Clock: a.Clock}
	t := Team{DB: a.Teams, Validator: v}
	u := User{Accounts: a.Accounts, Mailer: a.Mailer}
	f := Files{Storage: a.Files}
	m := Metrics{Collector: a.Metrics}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/register", http.HandlerFunc(u.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/token", a.Auth.Middleware(http.HandlerFunc(a.Auth.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", a.Auth.Middleware(http.HandlerFunc(a.Auth.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/files", http.HandlerFunc(f.DownloadHandler)).Methods("GET")

	apiCreate.Handle("/user", a.Auth.Middleware(http.HandlerFunc(u.MeHandler))).Methods("GET")

	// fixed paths under /cases must be registered before /cases/{case_id}
	apiCreate.Handle("/cases", a.Auth.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases", a.Auth.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases/export", a.Auth.Middleware(http.HandlerFunc(c.ExportCasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/day/{date}", a.Auth.Middleware(http.HandlerFunc(c.CasesOnDayHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/cases/{case_id}/history", a.Auth.Middleware(http.HandlerFunc(h.HistoryHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/history", a.Auth.Middleware(http.HandlerFunc(h.AddHistoryHandler))).Methods("POST")

	apiCreate.Handle("/dashboard", a.Auth.Middleware(http.HandlerFunc(d.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/calendar/{year}/{month}", a.Auth.Middleware(http.HandlerFunc(d.CalendarHandler))).Methods("GET")

	apiCreate.Handle("/teams", a.Auth.Middleware(http.HandlerFunc(t.TeamsHandler))).Methods("GET")
	apiCreate.Handle("/teams", a.Auth.Middleware(http.HandlerFunc(t.CreateTeamHandler))).Methods("POST")

	apiCreate.Handle("/metrics", a.Auth.Middleware(http.HandlerFunc(m.MetricsHandler))).Methods("GET")

	return r
}

// Connect opens the database and cache connections and builds the services. It is
// enough for the command line; Initialize also builds the router.
func (a *App) Connect(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With("error", err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect(ctx)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With("error", err).Error("failed to connect to database")
		return err
	}
	a.client = client
	zap.S().Info("case-diary-api has connected to the database")

	snapshots, err := a.connectCache(ctx)
	if err != nil {
		return err
	}

	a.Clock = diary.NewClock(a.Config.Timezone)
	a.Cases = cases.NewRepository(
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewCaseEventDatabase(a.dbHelper),
		databases.NewCaseHistoryDatabase(a.dbHelper),
		snapshots,
		validation.New(),
	)
	a.Accounts = users.NewAccounts(databases.NewUserDatabase(a.dbHelper))
	a.Teams = databases.NewTeamDatabase(a.dbHelper)

	bucket, err := a.dbHelper.Bucket(storage.BucketName)
	if err != nil {
		zap.S().With("error", err).Error("failed to open document bucket")
		return err
	}
	a.Files = &storage.Service{
		Store:  storage.NewGridFSStore(bucket),
		Signer: storage.NewSigner(a.signingSecret(), a.Config.BaseURL),
	}
	a.History = cases.NewHistoryService(a.Cases, a.Files.Store, a.Files)

	if a.Config.SendGridAPIKey != "" {
		a.Mailer = notifications.NewSendGridMailer(a.Config.SendGridAPIKey, mailFromName, a.Config.DigestFromEmail)
	} else {
		zap.S().Info("SENDGRID_API_KEY not set, email is disabled")
	}
	return nil
}

// Initialize is invoked by serve to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	if err := a.Connect(ctx); err != nil {
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close releases the database and cache connections
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.S().Warnw("failed to close redis", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) connectCache(ctx context.Context) (*cache.Snapshots, error) {
	var rc *cache.RedisCache
	switch {
	case a.Config.RedisURL != "":
		var err error
		rc, err = cache.NewRedisFromURL(a.Config.RedisURL)
		if err != nil {
			zap.S().With("error", err).Error("failed to configure redis")
			return nil, err
		}
	case a.Config.RedisAddr != "":
		rc = cache.NewRedis(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
	default:
		zap.S().Info("no redis configured, case snapshots are disabled")
		return cache.NewSnapshots(nil, a.Config.CacheTTL), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		// the snapshot cache is optional, run without it
		zap.S().Warnw("redis unreachable, case snapshots are disabled", "error", err)
		rc.Close()
		return cache.NewSnapshots(nil, a.Config.CacheTTL), nil
	}
	a.redis = rc
	zap.S().Info("case-diary-api has connected to redis")
	return cache.NewSnapshots(rc, a.Config.CacheTTL), nil
}

// signingSecret returns the configured secret for document links, or a random one.
// Links signed with a random secret stop working when the process restarts.
func (a *App) signingSecret() string {
	if a.Config.URLSigningSecret != "" {
		return a.Config.URLSigningSecret
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		zap.S().Fatalw("failed to generate url signing secret", "error", err)
	}
	zap.S().Warn("URL_SIGNING_SECRET not set, document links will not survive a restart")
	return hex.EncodeToString(b)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
