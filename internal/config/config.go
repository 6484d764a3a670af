package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	SessionSecret         string   `mapstructure:"SESSION_SECRET"`
	SessionTTLMinutes     int      `mapstructure:"SESSION_TTL_MINUTES"`
	BcryptCost            int      `mapstructure:"BCRYPT_COST"`
	MedicationCatalogURL  string   `mapstructure:"MEDICATION_CATALOG_URL"`
	MedicationCacheTTLSec int      `mapstructure:"MEDICATION_CACHE_TTL_SEC"`
}

// minBcryptCost is the floor for password hashing. Lower values are clamped.
const minBcryptCost = 10

// devSessionSecret is substituted in development when SESSION_SECRET is unset.
const devSessionSecret = "medrec-dev-secret-do-not-use"

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SESSION_TTL_MINUTES", 60)
	v.SetDefault("BCRYPT_COST", minBcryptCost)
	v.SetDefault("MEDICATION_CATALOG_URL", "https://gist.githubusercontent.com/sbraford/73f63d75bb995b6597754c1707e40cc2/raw/data.json")
	v.SetDefault("MEDICATION_CACHE_TTL_SEC", 300)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_MINUTES")
	v.BindEnv("BCRYPT_COST")
	v.BindEnv("MEDICATION_CATALOG_URL")
	v.BindEnv("MEDICATION_CACHE_TTL_SEC")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.BcryptCost < minBcryptCost {
		cfg.BcryptCost = minBcryptCost
	}

	if cfg.IsDev() && cfg.SessionSecret == "" {
		log.Println("WARNING: ==========================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: SESSION_SECRET is unset; a fixed dev secret is in use.")
		log.Println("WARNING: Every session token is forgeable. Do NOT use in production.")
		log.Println("WARNING: ==========================================================")
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a real SESSION_SECRET must be provided so session tokens cannot be forged.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.SessionSecret == "" || c.SessionSecret == devSessionSecret {
			return fmt.Errorf(
				"SESSION_SECRET must be set when ENV=%q; "+
					"refusing to start with a forgeable session key", c.Env)
		}
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	if c.MedicationCatalogURL == "" {
		return fmt.Errorf("MEDICATION_CATALOG_URL is required")
	}
	return nil
}
