package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	labapi "ecalab/pkg/ecalab"
)

func (a *app) runsCommand() *cobra.Command {
	var (
		limit int
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initStore(cmd); err != nil {
				return err
			}
			items, err := a.client.Runs(cmd.Context(), labapi.RunsRequest{Limit: limit, Kind: kind})
			if err != nil {
				return err
			}
			a.out().runs(items)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&kind, "kind", "", "only list runs of this kind")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a saved run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := runIDArg(args, latest)
			if err != nil {
				return err
			}
			if err := a.initStore(cmd); err != nil {
				return err
			}
			detail, err := a.client.Show(cmd.Context(), labapi.ShowRequest{RunID: runID, Latest: latest})
			if err != nil {
				return err
			}
			return a.out().show(detail)
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "show the most recent run")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var (
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Copy the artifacts of a saved run to an export directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := runIDArg(args, latest)
			if err != nil {
				return err
			}
			if err := a.initStore(cmd); err != nil {
				return err
			}
			summary, err := a.client.Export(cmd.Context(), labapi.ExportRequest{RunID: runID, Latest: latest, OutDir: outDir})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "exported run_id=%s to=%s\n", summary.RunID, summary.Directory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent run")
	cmd.Flags().StringVar(&outDir, "out", exportsDir, "export output directory")
	return cmd
}

func runIDArg(args []string, latest bool) (string, error) {
	var runID string
	if len(args) > 0 {
		runID = args[0]
	}
	if runID != "" && latest {
		return "", errors.New("use either a run id or --latest, not both")
	}
	if runID == "" && !latest {
		return "", errors.New("requires a run id or --latest")
	}
	return runID, nil
}
