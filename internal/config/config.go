package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret 仅用于本地开发，会话 cookie 与 Bearer 令牌都以它签名
const DefaultSessionSecret = "nutrascan-dev-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	GinMode           string
	SessionSecret     string
	StorageType       string
	DatabasePath      string
	DataDir           string
	AIProvider        string
	AIAPIKey          string
	AIModel           string
	AIBaseURL         string
	AITimeout         time.Duration
	ImageMaxDimension int
	Timezone          string
	Location          *time.Location
	Language          string
}

// FileConfig 是 NUTRASCAN_CONFIG 指向的 TOML 文件结构，所有字段可选
type FileConfig struct {
	ListenAddr    string `toml:"listen_addr"`
	Port          string `toml:"port"`
	GinMode       string `toml:"gin_mode"`
	SessionSecret string `toml:"session_secret"`
	Timezone      string `toml:"timezone"`
	Language      string `toml:"language"`
	Storage       struct {
		Type         string `toml:"type"`          // "sqlite", "memory" or "file"
		DatabasePath string `toml:"database_path"` // type=sqlite
		DataDir      string `toml:"data_dir"`      // type=file
	} `toml:"storage"`
	AI struct {
		Provider string `toml:"provider"`
		APIKey   string `toml:"api_key"`
		Model    string `toml:"model"`
		BaseURL  string `toml:"base_url"`
		Timeout  string `toml:"timeout"`
	} `toml:"ai"`
	Image struct {
		MaxDimension int `toml:"max_dimension"`
	} `toml:"image"`
}

// Read decodes a FileConfig from r.
func Read(r io.Reader) (FileConfig, error) {
	var cfg FileConfig
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a FileConfig from path.
func LoadFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return FileConfig{}, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// ENV=dev 时先加载 .env；NUTRASCAN_CONFIG 指定的文件作为底层，环境变量优先。
func Load() AppConfig {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	var file FileConfig
	if path := strings.TrimSpace(os.Getenv("NUTRASCAN_CONFIG")); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			log.Printf("[WARN] ignore config file: %v", err)
		} else {
			file = loaded
		}
	}

	return resolve(file, os.Getenv)
}

func resolve(file FileConfig, getenv func(string) string) AppConfig {
	pick := func(key, fromFile, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		if value := strings.TrimSpace(fromFile); value != "" {
			return value
		}
		return fallback
	}

	port := pick("PORT", file.Port, "8080")
	listenAddr := pick("LISTEN_ADDR", file.ListenAddr, fmt.Sprintf(":%s", port))

	provider := strings.ToLower(pick("AI_PROVIDER", file.AI.Provider, "gemini"))

	timeout := 60 * time.Second
	if raw := pick("AI_TIMEOUT", file.AI.Timeout, ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		} else {
			log.Printf("[WARN] invalid AI_TIMEOUT %q, using %s", raw, timeout)
		}
	}

	maxDimension := 800
	fileDimension := ""
	if file.Image.MaxDimension > 0 {
		fileDimension = strconv.Itoa(file.Image.MaxDimension)
	}
	if raw := pick("IMAGE_MAX_DIMENSION", fileDimension, ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxDimension = parsed
		}
	}

	timezone := pick("TIMEZONE", file.Timezone, "Local")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("[WARN] unknown TIMEZONE %q, using Local", timezone)
		timezone = "Local"
		location = time.Local
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		GinMode:           pick("GIN_MODE", file.GinMode, "release"),
		SessionSecret:     pick("SESSION_SECRET", file.SessionSecret, DefaultSessionSecret),
		StorageType:       strings.ToLower(pick("STORAGE_TYPE", file.Storage.Type, "sqlite")),
		DatabasePath:      pick("DATABASE_PATH", file.Storage.DatabasePath, "nutrascan.db"),
		DataDir:           pick("DATA_DIR", file.Storage.DataDir, "data"),
		AIProvider:        provider,
		AIAPIKey:          pick("AI_API_KEY", file.AI.APIKey, ""),
		AIModel:           pick("AI_MODEL", file.AI.Model, ""),
		AIBaseURL:         pick("AI_BASE_URL", file.AI.BaseURL, ""),
		AITimeout:         timeout,
		ImageMaxDimension: maxDimension,
		Timezone:          timezone,
		Location:          location,
		Language:          pick("LANGUAGE", file.Language, "pt"),
	}
}
