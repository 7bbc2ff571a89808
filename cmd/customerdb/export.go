package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"customerdb/internal/config"
	"customerdb/internal/exporter"
	"customerdb/internal/model"
)

var (
	exportTarget string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "顧客データを xlsx に書き出す",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTarget, "target", "company", "company | person")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "出力先（省略時はデータディレクトリの exports 配下）")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	kind, err := model.ParseEntityKind(exportTarget)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := exporter.NewExporter(st).Export(cmd.Context(), kind, func(p exporter.ProgressEvent) {
		logger.WithField("percent", p.Percent).Debug(p.Stage)
	})
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	path := exportOutput
	if path == "" {
		path = config.GetDataPath(appCfg, "exports", exporter.Filename(kind))
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	cmd.Println(path)
	return nil
}
