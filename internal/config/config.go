package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	DataDir    string `json:"data_dir"`
	GraphDir   string `json:"graph_dir"`
	StaticDir  string `json:"static_dir"`

	ModelProvider  string  `json:"model_provider"`
	OpenAIAPIKey   string  `json:"openai_api_key"`
	OpenAIModel    string  `json:"openai_model"`
	OpenAIBaseURL  string  `json:"openai_base_url"`
	DeepSeekAPIKey string  `json:"deepseek_api_key"`
	DeepSeekModel  string  `json:"deepseek_model"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float32 `json:"temperature"`

	MySQLHost     string `json:"mysql_host"`
	MySQLPort     int    `json:"mysql_port"`
	MySQLUser     string `json:"mysql_user"`
	MySQLPassword string `json:"mysql_password"`
	MySQLDatabase string `json:"mysql_database"`

	HTTPAddr      string        `json:"http_addr"`
	SessionDBPath string        `json:"session_db_path"`
	AgentMaxSteps int           `json:"agent_max_steps"`
	AgentTimeout  time.Duration `json:"agent_timeout"`

	Debug bool `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir: currentDir,
		DataDir:    filepath.Join(currentDir, "data"),
		GraphDir:   filepath.Join(currentDir, "graph"),
		StaticDir:  filepath.Join(currentDir, "static"),

		ModelProvider: "openai",
		OpenAIModel:   "gpt-4o-mini",
		OpenAIBaseURL: "https://api.openai.com/v1",
		DeepSeekModel: "deepseek-chat",
		MaxTokens:     2000,
		Temperature:   0.3,

		MySQLHost:     "localhost",
		MySQLPort:     3306,
		MySQLUser:     "root",
		MySQLPassword: "",
		MySQLDatabase: "financial_db",

		HTTPAddr:      ":8000",
		AgentMaxSteps: 40,
		AgentTimeout:  120 * time.Second,

		Debug: false,

		// Eino Debug defaults
		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = filepath.Join(cfg.DataDir, "sessions.db")
	}

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("GRAPH_DIR"); val != "" {
		c.GraphDir = val
	}
	if val := os.Getenv("STATIC_DIR"); val != "" {
		c.StaticDir = val
	}

	if val := os.Getenv("MODEL_PROVIDER"); val != "" {
		c.ModelProvider = strings.ToLower(val)
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_MODEL_NAME"); val != "" {
		c.OpenAIModel = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_MODEL_NAME"); val != "" {
		c.DeepSeekModel = val
	}
	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("TEMPERATURE"); val != "" {
		if v, err := strconv.ParseFloat(val, 32); err == nil {
			c.Temperature = float32(v)
		}
	}

	if val := os.Getenv("MYSQL_HOST"); val != "" {
		c.MySQLHost = val
	}
	if val := os.Getenv("MYSQL_PORT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MySQLPort = v
		}
	}
	if val := os.Getenv("MYSQL_USER"); val != "" {
		c.MySQLUser = val
	}
	if val := os.Getenv("MYSQL_PASSWORD"); val != "" {
		c.MySQLPassword = val
	}
	if val := os.Getenv("MYSQL_DATABASE"); val != "" {
		c.MySQLDatabase = val
	}

	if val := os.Getenv("HTTP_ADDR"); val != "" {
		c.HTTPAddr = val
	}
	if val := os.Getenv("SESSION_DB_PATH"); val != "" {
		c.SessionDBPath = val
	}
	if val := os.Getenv("AGENT_MAX_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.AgentMaxSteps = v
		}
	}
	if val := os.Getenv("AGENT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.AgentTimeout = d
		}
	}

	if val := os.Getenv("FINSAGE_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// Validate checks settings that must be present before serving traffic.
func (c *Config) Validate() error {
	switch c.ModelProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when MODEL_PROVIDER=openai")
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required when MODEL_PROVIDER=deepseek")
		}
	default:
		return fmt.Errorf("unsupported MODEL_PROVIDER %q (expected openai or deepseek)", c.ModelProvider)
	}
	if c.MySQLDatabase == "" {
		return fmt.Errorf("MYSQL_DATABASE must not be empty")
	}
	return nil
}

// DSN builds the MySQL connection string for the financial store.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.GraphDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
