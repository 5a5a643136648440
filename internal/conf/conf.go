package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the service configuration file.
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Omdb   *Omdb   `json:"omdb"`
	Auth   *Auth   `json:"auth"`
	Log    *Log    `json:"log"`
}

// Server holds transport settings.
type Server struct {
	Http *Server_HTTP `json:"http"`
	Grpc *Server_GRPC `json:"grpc"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Server_GRPC struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

// Data holds the backing store and cache settings.
type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

type Data_Database struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver          string    `json:"driver"`
	Source          string    `json:"source"`
	MaxIdleConns    int       `json:"max_idle_conns"`
	MaxOpenConns    int       `json:"max_open_conns"`
	ConnMaxLifetime *Duration `json:"conn_max_lifetime"`
	Debug           bool      `json:"debug"`
}

type Data_Redis struct {
	Addr         string    `json:"addr"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
	CacheTTL     *Duration `json:"cache_ttl"`
}

// Omdb configures the upstream metadata provider.
type Omdb struct {
	Url     string    `json:"url"`
	ApiKey  string    `json:"api_key"`
	Timeout *Duration `json:"timeout"`
	// RateLimit is the sustained number of upstream requests per second.
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

type Auth struct {
	AdminToken string `json:"admin_token"`
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Duration decodes "5s"-style strings (or integer nanoseconds) from config.
type Duration struct {
	time.Duration
}

// NewDuration wraps d.
func NewDuration(d time.Duration) *Duration {
	return &Duration{Duration: d}
}

// AsDuration returns the wrapped value; a nil receiver yields zero.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
