package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// withServices builds the services for one command and closes them after fn.
func (c *cli) withServices(ctx context.Context, fn func(*services) error) error {
	svc, err := buildServices(ctx, c.cfg, clockwork.NewRealClock(), c.log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(svc)
}

func (c *cli) todayCmd() *cobra.Command {
	var progress bool
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd.Context(), func(svc *services) error {
				if progress {
					items, err := svc.metrics.Progress(cmd.Context())
					if err != nil {
						return err
					}
					return printOutput(cmd.OutOrStdout(), c.output, items)
				}
				m, err := svc.metrics.GetToday(cmd.Context())
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), c.output, m)
			})
		},
	}
	cmd.Flags().BoolVar(&progress, "progress", false, "show progress towards each target instead")
	return cmd
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch today's metrics from upstream, bypassing the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd.Context(), func(svc *services) error {
				m, err := svc.metrics.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), c.output, m)
			})
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	names := make([]string, 0, len(domain.Fields))
	for _, f := range domain.Fields {
		names = append(names, string(f))
	}

	return &cobra.Command{
		Use:       "update <field> <value>",
		Short:     "Set one metric for today",
		Long:      "Set one metric for today. Fields: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := domain.ParseField(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}

			return c.withServices(cmd.Context(), func(svc *services) error {
				m, err := svc.metrics.UpdateMetric(cmd.Context(), field, value)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), c.output, m)
			})
		},
	}
}

func (c *cli) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Sync today's cached metrics with upstream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd.Context(), func(svc *services) error {
				m, err := svc.metrics.Push(cmd.Context())
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), c.output, m)
			})
		},
	}
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local metrics cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the cached snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd.Context(), func(svc *services) error {
				if err := svc.metrics.ClearCache(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
				return nil
			})
		},
	})
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the user profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd.Context(), func(svc *services) error {
				u, err := svc.profile.Get(cmd.Context())
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), c.output, u)
			})
		},
	}
}
