package bankxlive

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Database struct {
		ConnectionString string `yaml:"conn_str"`
	} `yaml:"database"`
	Ledger struct {
		NodeID         int64  `yaml:"node_id"`
		OpeningBalance string `yaml:"opening_balance"`
	} `yaml:"ledger"`
	Fraud struct {
		LargeAmount    string `yaml:"large_amount"`
		RecentActivity string `yaml:"recent_activity"`
	} `yaml:"fraud"`
	Gateway struct {
		BaseURL       string        `yaml:"base_url"`
		SecretKey     string        `yaml:"secret_key"`
		CallbackURL   string        `yaml:"callback_url"`
		Timeout       time.Duration `yaml:"timeout"`
		WebhookSecret string        `yaml:"webhook_secret"`
		Breaker       struct {
			MaxRequests         uint32        `yaml:"max_requests"`
			Interval            time.Duration `yaml:"interval"`
			Timeout             time.Duration `yaml:"timeout"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
		} `yaml:"breaker"`
	} `yaml:"gateway"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
		HashCost  int           `yaml:"hash_cost"`
		Admins    []struct {
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			FullName string `yaml:"full_name"`
			Email    string `yaml:"email"`
		} `yaml:"admins"`
	} `yaml:"auth"`
	Notifications struct {
		AllowedOrigins []string      `yaml:"allowed_origins"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		PongWait       time.Duration `yaml:"pong_wait"`
		SendBuffer     int           `yaml:"send_buffer"`
	} `yaml:"notifications"`
	Limits struct {
		Transfer       int64         `yaml:"transfer"`
		Payment        int64         `yaml:"payment"`
		Statement      int64         `yaml:"statement"`
		AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	} `yaml:"limits"`
}

// LoadConfig decodes YAML from r, overlays environment secrets and fills defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabaseConfig reads only what schema tooling needs: the journal
// connection string, from the file or DATABASE_URL. Other sections are
// neither defaulted nor validated.
func LoadDatabaseConfig(r io.Reader) (string, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return "", err
	}
	cfg.applyEnv()
	if cfg.Database.ConnectionString == "" {
		return "", ErrBadRequest{Fields: map[string]string{"database.conn_str": "required"}}
	}
	return cfg.Database.ConnectionString, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"LISTEN_ADDR":          &c.Server.Addr,
		"DATABASE_URL":         &c.Database.ConnectionString,
		"PAYSTACK_SECRET_KEY":  &c.Gateway.SecretKey,
		"PAYSTACK_WEBHOOK_KEY": &c.Gateway.WebhookSecret,
		"JWT_SECRET":           &c.Auth.JWTSecret,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate fills defaults and rejects values the server cannot start with.
func (c *Config) Validate() error {
	fields := map[string]string{}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.LevelInfoValue
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		fields["log_level"] = "unknown level"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Ledger.NodeID < 0 || c.Ledger.NodeID > 1023 {
		fields["ledger.node_id"] = "must be within 0..1023"
	}
	for name, v := range map[string]string{
		"ledger.opening_balance": c.Ledger.OpeningBalance,
		"fraud.large_amount":     c.Fraud.LargeAmount,
		"fraud.recent_activity":  c.Fraud.RecentActivity,
	} {
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			fields[name] = "must be a non-negative decimal"
		}
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "https://api.paystack.co"
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 15 * time.Second
	}
	if c.Gateway.WebhookSecret == "" {
		c.Gateway.WebhookSecret = c.Gateway.SecretKey
	}
	if c.Gateway.Breaker.MaxRequests == 0 {
		c.Gateway.Breaker.MaxRequests = 1
	}
	if c.Gateway.Breaker.Timeout == 0 {
		c.Gateway.Breaker.Timeout = 30 * time.Second
	}
	if c.Gateway.Breaker.ConsecutiveFailures == 0 {
		c.Gateway.Breaker.ConsecutiveFailures = 5
	}
	if c.Auth.JWTSecret == "" {
		fields["auth.jwt_secret"] = "required"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Notifications.WriteTimeout == 0 {
		c.Notifications.WriteTimeout = 10 * time.Second
	}
	if c.Notifications.PongWait == 0 {
		c.Notifications.PongWait = 60 * time.Second
	}
	if c.Notifications.SendBuffer == 0 {
		c.Notifications.SendBuffer = 16
	}
	if c.Limits.Transfer == 0 {
		c.Limits.Transfer = 64
	}
	if c.Limits.Payment == 0 {
		c.Limits.Payment = 16
	}
	if c.Limits.Statement == 0 {
		c.Limits.Statement = 4
	}
	if c.Limits.AcquireTimeout == 0 {
		c.Limits.AcquireTimeout = 2 * time.Second
	}

	if len(fields) > 0 {
		return ErrBadRequest{Fields: fields}
	}
	return nil
}

// OpeningBalance returns the configured starting grant, or DefaultOpeningBalance.
func (c *Config) OpeningBalance() decimal.Decimal {
	return decimalOr(c.Ledger.OpeningBalance, DefaultOpeningBalance)
}

func (c *Config) FraudThresholds() FraudThresholds {
	def := DefaultFraudThresholds()
	return FraudThresholds{
		LargeAmount:    decimalOr(c.Fraud.LargeAmount, def.LargeAmount),
		RecentActivity: decimalOr(c.Fraud.RecentActivity, def.RecentActivity),
	}
}

func decimalOr(s string, def decimal.Decimal) decimal.Decimal {
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d
}
