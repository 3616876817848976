// Package config loads service settings from configs/config.yaml, the process
// environment and an optional .env file.
package config

import (
	"fmt"
	"time"
)

// Settings is built once at startup and passed to every component that needs it.
type Settings struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr is the listen address for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LLMConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	ModelsFile   string        `mapstructure:"models_file"`
	ResourcesDir string        `mapstructure:"resources_dir"`
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
}

type KnowledgeConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}
