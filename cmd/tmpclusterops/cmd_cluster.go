package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/usecase/cluster"
)

func newCmdCluster() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "cluster",
		Short:              "Manage templated clusters",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("invalid command")
		},
	}
	cmd.AddCommand(newCmdClusterCreate(), newCmdClusterDelete(), newCmdClusterStatus(), newCmdClusterHistory())
	return cmd
}

func newCmdClusterCreate() *cobra.Command {
	var (
		ports    []int
		wait     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a cluster and print its FQDN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "cluster.create", args[0])
			defer func() { cleanup(err) }()

			rt, err := buildRuntime(cmd, requireAll)
			if err != nil {
				return err
			}
			out, err := rt.clusters.Create(ctx, &cluster.CreateInput{Name: args[0], Ports: ports})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.FQDN)
			if !wait {
				return nil
			}
			last, err := rt.clusters.Watch(ctx, &cluster.WatchInput{
				Name:     args[0],
				Interval: interval,
				OnChange: printStatusChange(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			if last.Last.Status != model.ClusterReady {
				return fmt.Errorf("cluster %s ended in %s", args[0], last.Last.Status)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&ports, "port", "p", nil, "Port bound to _PORTn_ in order (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the cluster is Ready or CreateFailed")
	cmd.Flags().DurationVar(&interval, "interval", cluster.DefaultWatchInterval, "Polling interval used with --wait")
	return cmd
}

func newCmdClusterDelete() *cobra.Command {
	var (
		wait     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "cluster.delete", args[0])
			defer func() { cleanup(err) }()

			rt, err := buildRuntime(cmd, requireSettings)
			if err != nil {
				return err
			}
			out, err := rt.clusters.Delete(ctx, &cluster.DeleteInput{Name: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleting resource group %s\n", out.ResourceGroup)
			if !wait {
				return nil
			}
			last, err := rt.clusters.Watch(ctx, &cluster.WatchInput{
				Name:     args[0],
				Interval: interval,
				Until: func(s model.ClusterOperationStatus) bool {
					return s == model.ClusterNotFound || s == model.ClusterDeleteFailed
				},
				OnChange: printStatusChange(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			if last.Last.Status != model.ClusterNotFound {
				return fmt.Errorf("cluster %s ended in %s", args[0], last.Last.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the resource group is gone")
	cmd.Flags().DurationVar(&interval, "interval", cluster.DefaultWatchInterval, "Polling interval used with --wait")
	return cmd
}

func newCmdClusterStatus() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status NAME",
		Short: "Show cluster status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "cluster.status", args[0])
			defer func() { cleanup(err) }()

			rt, err := buildRuntime(cmd, requireSettings)
			if err != nil {
				return err
			}
			out, err := rt.clusters.Status(ctx, &cluster.StatusInput{Name: args[0]})
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "text", "":
				fmt.Fprintln(cmd.OutOrStdout(), out.Status)
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text|json)")
	return cmd
}

func newCmdClusterHistory() *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "List recorded create and delete operations (requires journal.db)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(cmd, requireNone)
			if err != nil {
				return err
			}
			out, err := rt.clusters.History(cmd.Context(), &cluster.HistoryInput{Name: args[0], Limit: limit})
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "text", "":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STARTED\tOPERATION\tSTATUS\tGENERATION\tRESULT")
				for _, r := range out.Records {
					result := r.Result
					if r.Error != "" {
						result = r.Error
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.StartedAt.Format(time.RFC3339), r.Operation, r.Status, r.Generation, result)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", cluster.DefaultHistoryLimit, "Maximum number of records (-1 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text|json)")
	return cmd
}

// printStatusChange reports each observed status on w.
func printStatusChange(w io.Writer) func(*cluster.StatusOutput) {
	return func(out *cluster.StatusOutput) {
		fmt.Fprintf(w, "%s: %s\n", out.Name, out.Status)
	}
}
