package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSessionSecret = "change-me"

type Config struct {
	Env      string
	Port     string
	LogLevel string

	SessionSecret    string
	SessionMaxAge    time.Duration
	SessionHTTPSOnly bool
	SessionSameSite  string

	DBDriver string
	DBDSN    string

	DirectoryBackend string
	StaticUsers      string
	StaticAdmins     string
	LDAP             LDAPConfig

	AutoTrackingEnabled  bool
	AutoTrackingInterval time.Duration
	AutoTrackingTimeout  time.Duration
	PresenceStore        string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int

	TerminalAPIKey string

	CompanyName         string
	CompanyTaxID        string
	CompanyAddressLine1 string
	CompanyAddressLine2 string
	Currency            string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

type LDAPConfig struct {
	Server         string
	BaseDN         string
	UserAttribute  string
	BindDN         string
	BindPassword   string
	UserDNTemplate string
	UserSearchBase string
	UPNSuffix      string
	Authentication string
	AdminGroupDN   string
	UseSSL         bool
	StartTLS       bool
}

var (
	AppConfig Config
)

// LoadConfig reads the env files and fills AppConfig.
func LoadConfig() error {
	LoadEnvFiles(DefaultEnvFiles...)

	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	ldapServer := getEnvOrDefault("LDAP_SERVER", "ldap://localhost")

	cfg := Config{
		Env:      getEnvOrDefault("ENV", "production"),
		Port:     getEnvOrDefault("PORT", "3000"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		SessionSecret:    getEnvOrDefault("SESSION_SECRET", defaultSessionSecret),
		SessionMaxAge:    envSeconds("SESSION_MAX_AGE", 43200),
		SessionHTTPSOnly: envBool("SESSION_HTTPS_ONLY", false),
		SessionSameSite:  strings.ToLower(getEnvOrDefault("SESSION_SAMESITE", "lax")),

		DBDriver: strings.ToLower(getEnvOrDefault("DB_DRIVER", "sqlite")),
		DBDSN:    getEnvOrDefault("DB_DSN", "timetracking.db"),

		DirectoryBackend: strings.ToLower(getEnvOrDefault("DIRECTORY_BACKEND", "ldap")),
		StaticUsers:      os.Getenv("DIRECTORY_STATIC_USERS"),
		StaticAdmins:     os.Getenv("DIRECTORY_STATIC_ADMINS"),
		LDAP: LDAPConfig{
			Server:         ldapServer,
			BaseDN:         os.Getenv("LDAP_BASE_DN"),
			UserAttribute:  getEnvOrDefault("LDAP_USER_ATTRIBUTE", "uid"),
			BindDN:         os.Getenv("LDAP_BIND_DN"),
			BindPassword:   os.Getenv("LDAP_BIND_PASSWORD"),
			UserDNTemplate: os.Getenv("LDAP_USER_DN_TEMPLATE"),
			UserSearchBase: os.Getenv("LDAP_USER_SEARCH_BASE"),
			UPNSuffix:      os.Getenv("LDAP_UPN_SUFFIX"),
			Authentication: strings.ToUpper(getEnvOrDefault("LDAP_AUTHENTICATION", "SIMPLE")),
			AdminGroupDN:   os.Getenv("LDAP_ADMIN_GROUP_DN"),
			UseSSL:         envBool("LDAP_USE_SSL", strings.HasPrefix(strings.ToLower(ldapServer), "ldaps://")),
			StartTLS:       envBool("LDAP_STARTTLS", false),
		},

		AutoTrackingEnabled:  envBool("AUTO_TRACKING_ENABLED", false),
		AutoTrackingInterval: envSeconds("AUTO_TRACKING_INTERVAL", 30),
		AutoTrackingTimeout:  envSeconds("AUTO_TRACKING_TIMEOUT", 120),
		PresenceStore:        strings.ToLower(getEnvOrDefault("PRESENCE_STORE", "memory")),
		RedisAddr:            getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envInt("REDIS_DB", 0),

		TerminalAPIKey: os.Getenv("TERMINAL_API_KEY"),

		CompanyName:         getEnvOrDefault("COMPANY_NAME", "Landeron Swiss Movements"),
		CompanyTaxID:        getEnvOrDefault("COMPANY_TAX_ID", "TAXIDPLACEHOLDER"),
		CompanyAddressLine1: getEnvOrDefault("COMPANY_ADDRESS_LINE1", "Junkholzweg 1"),
		CompanyAddressLine2: getEnvOrDefault("COMPANY_ADDRESS_LINE2", "4303 Kaiseraugst"),
		Currency:            getEnvOrDefault("CURRENCY", "CHF"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.DirectoryBackend {
	case "ldap", "static":
	default:
		return fmt.Errorf("unsupported DIRECTORY_BACKEND %q", c.DirectoryBackend)
	}
	switch c.PresenceStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported PRESENCE_STORE %q", c.PresenceStore)
	}
	if c.SessionSecret == defaultSessionSecret {
		if !c.IsDev() {
			return fmt.Errorf("SESSION_SECRET is required")
		}
		log.Printf("Warning: SESSION_SECRET not set, using the development default")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envBool accepts 1, true, yes and on; anything else set is false.
func envBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func envSeconds(key string, defaultSeconds int) time.Duration {
	n := envInt(key, defaultSeconds)
	if n <= 0 {
		n = defaultSeconds
	}
	return time.Duration(n) * time.Second
}
