package cmd

import (
	"fmt"
	"sort"

	"jewelrydam/db"
	"jewelrydam/processing"

	"github.com/spf13/cobra"
)

var reconcileDelete bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one object store reconciliation pass",
	Long: `Run one object store reconciliation pass and exit.

This command:
  1. Retries deletes of blobs recorded as orphans
  2. Scans the object store for blobs no asset references
  3. Records them, or deletes them with --delete`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDelete, "delete", false, "delete unreferenced blobs instead of recording them")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	conn, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close(conn)
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}

	reconciler := processing.NewReconciler(conn, store, processing.Options{
		GracePeriod:        cfg.ReconcileGracePeriod,
		DeleteUnreferenced: reconcileDelete || cfg.ReconcileDeleteUnreferenced,
		StoreTimeout:       cfg.ObjectStoreTimeout,
	})
	report, err := reconciler.RunOnce(cmd.Context())
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", name, report[name])
	}
	return err
}
