package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"customerdb/internal/config"
	"customerdb/internal/importer"
	"customerdb/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "スプレッドシートを取り込む",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	coord := importer.NewCoordinator(st, importer.Options{
		ChunkSize: appCfg.Ingest.ChunkSize,
		Logger:    logger,
	})
	outcome := coord.Ingest(cmd.Context(), importer.Upload{Filename: args[0], Data: data})

	out, err := json.Marshal(importer.Response(outcome))
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if outcome.Failed() {
		return outcome.Err
	}
	return nil
}

func openStore() (*store.Store, error) {
	if _, err := config.EnsureDataDir(appCfg); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.New(config.DBPath(appCfg))
}
