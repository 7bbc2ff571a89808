package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"customerdb/internal/config"
	"customerdb/internal/logging"
)

var (
	dataDirFlag  string
	logLevelFlag string

	appCfg  *config.AppConfig
	cfgInfo config.LoadConfigInfo
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "customerdb",
	Short:         "顧客データ（法人・個人）の取込と管理",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "データディレクトリ（設定ファイルより優先）")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "ログレベル silent|error|warn|info|debug")
}

// loadConfig 設定を読み、フラグで上書きしてロガーを作る
func loadConfig(cmd *cobra.Command) error {
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		cfg.Data.DataDir = dataDirFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}

	appCfg = cfg
	cfgInfo = info
	logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}
