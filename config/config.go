package config

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/models"
)

// Config holds the project config values
type Config struct {
	URL              string
	DatabaseName     string
	BaseURL          string
	Port             string
	Env              string
	Timezone         *time.Location
	URLSigningSecret string
	RedisURL         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CacheTTL         time.Duration
	SendGridAPIKey   string
	DigestFromEmail  string
	DigestSchedule   string
	RequestTimeout   time.Duration
}

func init() {
	viper.SetDefault("DB_URI", "mongodb://127.0.0.1:27017")
	viper.SetDefault("DB_NAME", "case-diary")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("ENV", "production")
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)
	viper.SetDefault("DIGEST_FROM_EMAIL", "no-reply@case-diary.app")
	viper.SetDefault("DIGEST_SCHEDULE", "0 7 * * *")
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	viper.AutomaticEnv()
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	env := viper.GetString("ENV")
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	loc, err := time.LoadLocation(viper.GetString("TIMEZONE"))
	if err != nil {
		zap.S().Warnw("unknown timezone, falling back to UTC",
			"timezone", viper.GetString("TIMEZONE"),
			"error", err)
		loc = time.UTC
	}

	return &Config{
		URL:              viper.GetString("DB_URI"),
		DatabaseName:     viper.GetString("DB_NAME"),
		BaseURL:          strings.TrimRight(viper.GetString("BASE_URL"), "/"),
		Port:             viper.GetString("PORT"),
		Env:              env,
		Timezone:         loc,
		URLSigningSecret: viper.GetString("URL_SIGNING_SECRET"),
		RedisURL:         viper.GetString("REDIS_URL"),
		RedisAddr:        viper.GetString("REDIS_ADDR"),
		RedisPassword:    viper.GetString("REDIS_PASSWORD"),
		RedisDB:          viper.GetInt("REDIS_DB"),
		CacheTTL:         time.Duration(viper.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		SendGridAPIKey:   viper.GetString("SENDGRID_API_KEY"),
		DigestFromEmail:  viper.GetString("DIGEST_FROM_EMAIL"),
		DigestSchedule:   viper.GetString("DIGEST_SCHEDULE"),
		RequestTimeout:   time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
	}

}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With("error", err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{
			Message: message,
			Error:   errText,
		},
	})
	w.Write(b)
}
