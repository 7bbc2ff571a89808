package main

import (
	"github.com/spf13/cobra"
)

// ビルド時に -ldflags で埋め込む
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "バージョンを表示する",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("customerdb version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
