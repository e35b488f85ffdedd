package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/neuron_ledger/internal/core/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/platform/config"
	"github.com/SscSPs/neuron_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/neuron_ledger/pkg/database"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check stored ledger totals against allocation rows",
	Long: `Recomputes every invoice's collected amount and every collection's applied
amount from the allocation rows and prints the report as JSON.

Exits non-zero when drift is found unless --allow-drift is given.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Bool("allow-drift", false, "Exit zero even when drift is found")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("PGSQL_URL must be set to audit the ledger")
	}

	ctx := cmd.Context()
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool))
	report, err := container.Audit.AuditLedger(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.ToAuditReportResponse(report)); err != nil {
		return err
	}

	allowDrift, _ := cmd.Flags().GetBool("allow-drift")
	if !report.Clean() {
		slog.Warn("Ledger drift detected", slog.Int("drifts", len(report.Drifts)))
		if !allowDrift {
			return fmt.Errorf("ledger audit found %d drift(s)", len(report.Drifts))
		}
	}
	return nil
}
