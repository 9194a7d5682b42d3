package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultEnvFile is the dotenv file loaded before the environment is read.
const DefaultEnvFile = "ini.env"

// Config holds the full application configuration.
type Config struct {
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Text      TextConfig      `yaml:"text" mapstructure:"text"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Quality   QualityConfig   `yaml:"quality" mapstructure:"quality"`
	Remote    RemoteConfig    `yaml:"remote" mapstructure:"remote"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	File      FileConfig      `yaml:"file" mapstructure:"file"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the PDFs to process.
type InputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig locates the ledgers.
type OutputConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	SuccessFile     string `yaml:"success_file" mapstructure:"success_file"`
	ErrorFile       string `yaml:"error_file" mapstructure:"error_file"`
	UnsupportedFile string `yaml:"unsupported_file" mapstructure:"unsupported_file"`
	XLSXFile        string `yaml:"xlsx_file" mapstructure:"xlsx_file"`
}

// TextConfig selects how the native text layer is read.
type TextConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// OCRConfig configures the OCR fallback.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PopplerPath   string `yaml:"poppler_path" mapstructure:"poppler_path"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Language      string `yaml:"language" mapstructure:"language"`
	DPI           int    `yaml:"dpi" mapstructure:"dpi"`
	PSM           int    `yaml:"psm" mapstructure:"psm"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// QualityConfig holds the scan-quality thresholds.
type QualityConfig struct {
	MinChars   int     `yaml:"min_chars" mapstructure:"min_chars"`
	MinDensity float64 `yaml:"min_density" mapstructure:"min_density"`
}

// RemoteConfig configures the structured (remote) extractor.
type RemoteConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CircuitThreshold  int     `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
	CircuitResetSecs  int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// AnthropicConfig holds Anthropic API settings for the alternative remote provider.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FileConfig controls the wait for a file to become readable.
type FileConfig struct {
	WaitAttempts int `yaml:"wait_attempts" mapstructure:"wait_attempts"`
	WaitDelayMs  int `yaml:"wait_delay_ms" mapstructure:"wait_delay_ms"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency   int  `yaml:"concurrency" mapstructure:"concurrency"`
	SkipProcessed bool `yaml:"skip_processed" mapstructure:"skip_processed"`
}

// StoreConfig configures the run journal backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging. When Dir is set every run also writes a
// timestamped log file there.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// legacyEnv maps config keys to the environment names used by existing
// ini.env deployments.
var legacyEnv = map[string]string{
	"input.dir":          "PASTA_PDF",
	"output.dir":         "PASTA_SAIDA",
	"remote.api_key":     "DEEPSEEK_API_KEY",
	"ocr.poppler_path":   "POPPLER_PATH",
	"ocr.tesseract_path": "TESSERACT_PATH",
}

// Load reads configuration from the dotenv file, config.yaml and the
// environment. A missing envFile or config.yaml is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "config: load env file %s", envFile)
		}
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "INVOICE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	v.SetDefault("input.dir", "pdfs")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.success_file", "notas_fiscais_extraidas.csv")
	v.SetDefault("output.error_file", "arquivos_com_erro.csv")
	v.SetDefault("output.unsupported_file", "documentos_nao_suportados.csv")
	v.SetDefault("output.xlsx_file", "notas_fiscais_extraidas.xlsx")
	v.SetDefault("text.provider", "native")
	v.SetDefault("text.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.poppler_path", "")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "por")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.mistral_api_key", "")
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")
	v.SetDefault("quality.min_chars", 200)
	v.SetDefault("quality.min_density", 500.0)
	v.SetDefault("remote.provider", "deepseek")
	v.SetDefault("remote.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.model", "deepseek-chat")
	v.SetDefault("remote.timeout_secs", 60)
	v.SetDefault("remote.max_attempts", 3)
	v.SetDefault("remote.requests_per_second", 0.0)
	v.SetDefault("remote.circuit_threshold", 5)
	v.SetDefault("remote.circuit_reset_secs", 60)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("file.wait_attempts", 10)
	v.SetDefault("file.wait_delay_ms", 1000)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.skip_processed", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.dir", "logs")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate checks provider names and numeric bounds.
func (c *Config) Validate() error {
	var errs []string

	switch c.Text.Provider {
	case "native", "pdftotext":
	default:
		errs = append(errs, fmt.Sprintf("text.provider %q is not one of native, pdftotext", c.Text.Provider))
	}
	switch c.OCR.Provider {
	case "tesseract", "off":
	case "mistral":
		if c.OCR.MistralKey == "" {
			errs = append(errs, "ocr.mistral_api_key is required for the mistral provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("ocr.provider %q is not one of tesseract, mistral, off", c.OCR.Provider))
	}
	switch c.Remote.Provider {
	case "deepseek", "anthropic", "off":
	default:
		errs = append(errs, fmt.Sprintf("remote.provider %q is not one of deepseek, anthropic, off", c.Remote.Provider))
	}
	switch c.Store.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not one of sqlite, postgres, none", c.Store.Driver))
	}

	if c.Quality.MinChars < 0 || c.Quality.MinDensity < 0 {
		errs = append(errs, "quality thresholds must be >= 0")
	}
	if c.OCR.DPI <= 0 {
		errs = append(errs, "ocr.dpi must be > 0")
	}
	if c.File.WaitAttempts < 1 {
		errs = append(errs, "file.wait_attempts must be >= 1")
	}
	if c.Remote.MaxAttempts < 1 {
		errs = append(errs, "remote.max_attempts must be >= 1")
	}
	if c.Remote.TimeoutSecs < 1 {
		errs = append(errs, "remote.timeout_secs must be >= 1")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 32 {
		errs = append(errs, "batch.concurrency must be between 1 and 32")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	c.Remote.APIKey = mask(c.Remote.APIKey)
	c.Anthropic.Key = mask(c.Anthropic.Key)
	c.OCR.MistralKey = mask(c.OCR.MistralKey)
	if c.Store.DatabaseURL != "" && c.Store.Driver == "postgres" {
		c.Store.DatabaseURL = mask(c.Store.DatabaseURL)
	}
	return c
}

// LedgerPath joins a ledger file name onto the output directory.
func (c *Config) LedgerPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// InitLogger initializes the global zap logger. Output goes to stderr and,
// when cfg.Dir is set, to processamento_YYYYMMDD_HHMMSS.log inside it.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	zapCfg.OutputPaths = []string{"stderr"}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return eris.Wrapf(err, "config: create log dir %s", cfg.Dir)
		}
		name := fmt.Sprintf("processamento_%s.log", time.Now().Format("20060102_150405"))
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, filepath.Join(cfg.Dir, name))
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
