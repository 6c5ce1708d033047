package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Index     IndexConfig     `mapstructure:"index"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string        `mapstructure:"address"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// LLMConfig contains the local model server configuration
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // ollama
	BaseURL        string        `mapstructure:"base_url"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// SearchConfig contains web search provider settings
type SearchConfig struct {
	Provider   string `mapstructure:"provider"` // google, serper
	APIKey     string `mapstructure:"api_key"`
	EngineID   string `mapstructure:"engine_id"` // google custom search cx
	NumResults int    `mapstructure:"num_results"`
}

// FetchConfig contains page fetcher settings
type FetchConfig struct {
	Type      string `mapstructure:"type"` // http, chromedp
	TimeoutMS int    `mapstructure:"timeout_ms"`
	MaxChars  int    `mapstructure:"max_chars"`
}

// RetrievalConfig contains chunking and ranking parameters
type RetrievalConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopN         int `mapstructure:"top_n"`     // chunks kept by the lexical filter
	ContextK     int `mapstructure:"context_k"` // items returned by the vector query
	BatchSize    int `mapstructure:"batch_size"`
}

// IndexConfig contains vector collection storage settings
type IndexConfig struct {
	Store      string      `mapstructure:"store"` // file, redis
	Dir        string      `mapstructure:"dir"`
	Collection string      `mapstructure:"collection"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings for the redis store
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

// LoadConfig reads configuration from file and environment (LOLAMO_*).
// A missing config file is not an error; defaults and env cover everything.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("server.jwt_secret", "")
	viper.SetDefault("server.token_ttl", 30*time.Minute)
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.base_url", "http://127.0.0.1:11434")
	viper.SetDefault("llm.chat_model", "llama3")
	viper.SetDefault("llm.embedding_model", "llama3")
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("search.provider", "google")
	viper.SetDefault("search.api_key", "")
	viper.SetDefault("search.engine_id", "")
	viper.SetDefault("search.num_results", 10)
	viper.SetDefault("fetch.type", "http")
	viper.SetDefault("fetch.timeout_ms", 10000)
	viper.SetDefault("fetch.max_chars", 20000)
	viper.SetDefault("retrieval.chunk_size", 1000)
	viper.SetDefault("retrieval.chunk_overlap", 200)
	viper.SetDefault("retrieval.top_n", 20)
	viper.SetDefault("retrieval.context_k", 5)
	viper.SetDefault("retrieval.batch_size", 10)
	viper.SetDefault("index.store", "file")
	viper.SetDefault("index.dir", "temp/vecdb")
	viper.SetDefault("index.collection", "google_search_db")
	viper.SetDefault("index.redis.host", "127.0.0.1")
	viper.SetDefault("index.redis.port", "6379")
	viper.SetDefault("index.redis.pass", "")
	viper.SetDefault("index.redis.db", 0)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("LOLAMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
