package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all invoices to an Excel workbook on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := apiClient().ExportExcel(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a timestamped backup of the invoice store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := apiClient().Backup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("backup written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
}
