package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FINANCE_SERVER_PORT.
const EnvPrefix = "FINANCE"

// Load reads settings. configFile may be empty, in which case config.yaml is
// searched for in ./configs and the working directory; a missing file is not
// an error. Environment variables override file values.
func Load(configFile string) (*Settings, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Conventional names that deployments already export.
	_ = v.BindEnv("llm.openai_api_key", EnvPrefix+"_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("app.debug", EnvPrefix+"_APP_DEBUG", "DEBUG")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&s)
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

// loadEnvFile loads the first .env found walking up from the working directory
// to the module root. Existing process variables win.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Autonomous Strategic Finance")
	v.SetDefault("app.debug", false)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.models_file", "config/models.yaml")
	v.SetDefault("llm.resources_dir", "resources")
	v.SetDefault("knowledge.path", "data/knowledge_base.hjson")
	v.SetDefault("knowledge.watch", true)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.url", "")
}

// applyDefaults repairs zero values that a config file may have set explicitly.
func applyDefaults(s *Settings) {
	if s.Server.Port == 0 {
		s.Server.Port = 8000
	}
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = 30 * time.Second
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = 60 * time.Second
	}
	if s.LLM.Timeout == 0 {
		s.LLM.Timeout = 30 * time.Second
	}
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.App.Debug {
		s.Logging.Level = "debug"
	}
	s.Cache.Backend = strings.ToLower(strings.TrimSpace(s.Cache.Backend))
	if s.Cache.Backend == "" {
		s.Cache.Backend = CacheMemory
	}
}

func validate(s *Settings) error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", s.Server.Port)
	}
	switch s.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if s.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when cache.backend=redis")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", s.Cache.Backend)
	}
	return nil
}
