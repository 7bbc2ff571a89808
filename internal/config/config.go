package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix 環境変数の接頭辞
const EnvPrefix = "CUSTOMERDB_"

// AppConfig アプリケーション設定
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Ingest IngestConfig `toml:"ingest"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port        int  `toml:"port" env:"PORT"`
	DevMode     bool `toml:"dev_mode" env:"DEV_MODE"`
	OpenBrowser bool `toml:"open_browser" env:"OPEN_BROWSER"`
}

// DataConfig データ設定
type DataConfig struct {
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
	DBName  string `toml:"db_name" env:"DB_NAME"`
}

// IngestConfig 取込設定
type IngestConfig struct {
	ChunkSize   int   `toml:"chunk_size" env:"CHUNK_SIZE"`
	MaxUploadMB int64 `toml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
}

// LogConfig ログ設定
type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// LoadConfigInfo 設定読込のメタ情報
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
	DotEnvFiles   int
}

// DefaultConfig 既定の設定
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20261,
			DevMode:     false,
			OpenBrowser: false,
		},
		Data: DataConfig{
			DataDir: "data",
			DBName:  "customerdb.db",
		},
		Ingest: IngestConfig{
			ChunkSize:   50,
			MaxUploadMB: 20,
		},
		Log: LogConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 実行ファイルのあるディレクトリ
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 取得できなければカレントディレクトリ
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 実行ファイルと同じ場所の config.toml から設定を読み込む
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(baseDir())
}

// LoadFrom dir/config.toml を読み、.env と環境変数で上書きする
// 優先順: 環境変数 > config.toml > 既定値
func LoadFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	data, err := os.ReadFile(info.Path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", info.Path, err)
		}
	case os.IsNotExist(err):
		// 設定ファイルが無ければ既定値
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", info.Path, err)
	}

	n, err := loadDotEnv(filepath.Join(dir, ".env"), ".env")
	info.DotEnvFiles = n
	if err != nil {
		return nil, info, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, info, fmt.Errorf("failed to parse environment: %w", err)
	}
	if _, ok := os.LookupEnv(EnvPrefix + "PORT"); ok {
		info.PortSpecified = true
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// loadDotEnv 存在する .env だけを読み込む（既存の環境変数は上書きしない）
func loadDotEnv(paths ...string) (int, error) {
	seen := make(map[string]struct{}, len(paths))
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Validate 値の範囲を確認する
func (c *AppConfig) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("invalid ingest.chunk_size: %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid ingest.max_upload_mb: %d", c.Ingest.MaxUploadMB)
	}
	if c.Data.DBName == "" {
		return fmt.Errorf("data.db_name is empty")
	}
	return nil
}

// MaxUploadBytes アップロード上限（バイト）
func (c *AppConfig) MaxUploadBytes() int64 {
	return c.Ingest.MaxUploadMB << 20
}

// SaveTo dir/config.toml に保存する
func SaveTo(dir string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0644)
}

// ResolveDataDir データディレクトリの絶対パス
// 相対パスは実行ファイルの場所を基準にする
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir データディレクトリを作成する
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// DBPath データベースファイルのパス
func DBPath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), config.Data.DBName)
}

// GetDataPath データディレクトリ配下のパス
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
