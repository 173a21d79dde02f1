// Package config loads settings from an optional YAML file, then .env and the
// process environment. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"liveattendance/internal/checkin"
	"liveattendance/internal/geo"
	"liveattendance/internal/http/middleware"
	"liveattendance/internal/location"
	"liveattendance/internal/store"
	"liveattendance/internal/ticket"
)

const DefaultFile = "config.yaml"

var ErrInvalid = errors.New("invalid config")

// Duration reads "2s" style values from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Geofence struct {
	Lat        float64 `yaml:"lat"`
	Lng        float64 `yaml:"lng"`
	ThresholdM float64 `yaml:"threshold_m"`
}

func (g Geofence) Fence() geo.Fence {
	return geo.Fence{Reference: geo.Point{Lat: g.Lat, Lng: g.Lng}, ThresholdMeters: g.ThresholdM}
}

type CheckIn struct {
	ScanDelay    Duration `yaml:"scan_delay"`
	FixTimeout   Duration `yaml:"fix_timeout"`
	FixInterval  Duration `yaml:"fix_interval"`
	HighAccuracy bool     `yaml:"high_accuracy"`
	Timezone     string   `yaml:"timezone"`
}

// Location resolves Timezone; an empty value means the host zone.
func (c CheckIn) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c CheckIn) FixRequest() location.FixRequest {
	return location.FixRequest{HighAccuracy: c.HighAccuracy, Interval: c.FixInterval.Std()}
}

type Server struct {
	Addr           string   `yaml:"addr"`
	Env            string   `yaml:"env"`
	TicketSecret   string   `yaml:"ticket_secret"`
	TicketTTL      Duration `yaml:"ticket_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

func (s Server) Production() bool { return s.Env == "production" }

type GPS struct {
	Port    string  `yaml:"port"`
	Baud    int     `yaml:"baud"`
	MaxHDOP float64 `yaml:"max_hdop"`
}

type Config struct {
	Geofence Geofence     `yaml:"geofence"`
	CheckIn  CheckIn      `yaml:"checkin"`
	Store    store.Config `yaml:"store"`
	Server   Server       `yaml:"server"`
	GPS      GPS          `yaml:"gps"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Geofence: Geofence{
			Lat:        geo.DefaultReference.Lat,
			Lng:        geo.DefaultReference.Lng,
			ThresholdM: geo.DefaultThresholdMeters,
		},
		CheckIn: CheckIn{
			ScanDelay:    Duration(checkin.DefaultScanDelay),
			FixTimeout:   Duration(checkin.DefaultFixTimeout),
			FixInterval:  Duration(location.DefaultInterval),
			HighAccuracy: true,
		},
		Store: store.Config{
			Driver:     store.DriverFirebase,
			Collection: "log_attendance",
			Firebase:   store.FirebaseConfig{DatabaseURL: store.DefaultFirebaseDatabaseURL},
		},
		Server: Server{
			Addr:      ":8080",
			TicketTTL: Duration(ticket.DefaultTTL),
			RateLimit: 1,
			RateBurst: 5,
		},
		GPS: GPS{Baud: location.DefaultBaud, MaxHDOP: location.DefaultMaxHDOP},
	}
}

// Load reads .env, then CONFIG_FILE (default config.yaml, optional), then the
// environment, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	cfg, err := LoadFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes path over the defaults. A missing file is only an error
// when required is set.
func LoadFile(path string, required bool) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	envFloat("GEOFENCE_LAT", &c.Geofence.Lat, &errs)
	envFloat("GEOFENCE_LNG", &c.Geofence.Lng, &errs)
	envFloat("GEOFENCE_THRESHOLD_M", &c.Geofence.ThresholdM, &errs)
	envDuration("SCAN_DELAY", &c.CheckIn.ScanDelay, &errs)
	envDuration("FIX_TIMEOUT", &c.CheckIn.FixTimeout, &errs)
	envString("APP_TZ", &c.CheckIn.Timezone)

	envString("STORE_DRIVER", &c.Store.Driver)
	envString("ATTENDANCE_COLLECTION", &c.Store.Collection)
	envString("FIREBASE_DATABASE_URL", &c.Store.Firebase.DatabaseURL)
	envString("FIREBASE_PROJECT_ID", &c.Store.Firebase.ProjectID)
	envString("GOOGLE_APPLICATION_CREDENTIALS", &c.Store.Firebase.CredentialsFile)
	envString("FIREBASE_CREDENTIALS_JSON", &c.Store.Firebase.CredentialsJSON)
	envString("DATABASE_URL", &c.Store.Postgres.DSN)
	envString("DYNAMODB_TABLE", &c.Store.DynamoDB.Table)
	envString("AWS_REGION", &c.Store.DynamoDB.Region)
	envString("DYNAMODB_ENDPOINT", &c.Store.DynamoDB.Endpoint)

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		c.Server.Addr = ":" + v
	}
	envString("APP_ENV", &c.Server.Env)
	envString("TICKET_SECRET", &c.Server.TicketSecret)
	envDuration("TICKET_TTL", &c.Server.TicketTTL, &errs)
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("TRUSTED_PROXIES")); v != "" {
		c.Server.TrustedProxies = strings.Split(v, ",")
	}
	envFloat("RATE_LIMIT", &c.Server.RateLimit, &errs)

	envString("GPS_PORT", &c.GPS.Port)
	if v := strings.TrimSpace(os.Getenv("GPS_BAUD")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GPS_BAUD: %w", err))
		} else {
			c.GPS.Baud = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	if !(geo.Point{Lat: c.Geofence.Lat, Lng: c.Geofence.Lng}).Valid() {
		errs = append(errs, fmt.Errorf("geofence reference (%v, %v) out of range", c.Geofence.Lat, c.Geofence.Lng))
	}
	if c.Geofence.ThresholdM <= 0 {
		errs = append(errs, errors.New("geofence threshold must be positive"))
	}
	if c.CheckIn.ScanDelay < 0 {
		errs = append(errs, errors.New("scan_delay must not be negative"))
	}
	if c.CheckIn.FixTimeout <= 0 {
		errs = append(errs, errors.New("fix_timeout must be positive"))
	}
	if _, err := c.CheckIn.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	switch c.Store.Driver {
	case "", store.DriverMemory, store.DriverFirebase, store.DriverFirestore, store.DriverPostgres, store.DriverDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("%w %q", store.ErrUnknownDriver, c.Store.Driver))
	}
	if c.Server.TicketTTL <= 0 {
		errs = append(errs, errors.New("ticket_ttl must be positive"))
	}
	if _, err := middleware.ParseProxies(c.Server.TrustedProxies); err != nil {
		errs = append(errs, err)
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if c.Server.Production() && c.Server.TicketSecret == "" {
		errs = append(errs, errors.New("ticket_secret is required in production"))
	}
	if c.GPS.Baud <= 0 {
		errs = append(errs, errors.New("gps baud must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}

func envDuration(key string, dst *Duration, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = Duration(d)
}
