package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/perfdash/internal/report"
	"github.com/verte-zerg/perfdash/internal/savedurls"
)

var urlsSelectAll bool

func newURLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Manage saved URLs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved URLs",
		Args:  cobra.NoArgs,
		RunE:  runURLsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <url>",
		Short: "Save a named URL",
		Args:  cobra.ExactArgs(2),
		RunE:  runURLsAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <id|name> <name> <url>",
		Short: "Edit a saved URL",
		Args:  cobra.ExactArgs(3),
		RunE:  runURLsEdit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id|name>...",
		Short: "Remove saved URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runURLsRemove,
	})
	selectCmd := &cobra.Command{
		Use:   "select [id|name...]",
		Short: "Mark saved URLs as selected",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runURLsSelect(cmd, args, true)
		},
	}
	selectCmd.Flags().BoolVar(&urlsSelectAll, "all", false, "apply to every saved URL")
	deselectCmd := &cobra.Command{
		Use:   "deselect [id|name...]",
		Short: "Clear the selected mark on saved URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runURLsSelect(cmd, args, false)
		},
	}
	deselectCmd.Flags().BoolVar(&urlsSelectAll, "all", false, "apply to every saved URL")
	cmd.AddCommand(selectCmd, deselectCmd)
	return cmd
}

func withRegistry(cmd *cobra.Command, fn func(ctx context.Context, reg *savedurls.Registry) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	reg, err := savedurls.Load(ctx, a.store)
	if err != nil {
		return err
	}
	return fn(ctx, reg)
}

func runURLsList(cmd *cobra.Command, _ []string) error {
	return withRegistry(cmd, func(_ context.Context, reg *savedurls.Registry) error {
		entries := reg.List()
		if len(entries) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved URLs.")
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			mark := " "
			if e.Selected {
				mark = "x"
			}
			rows = append(rows, []string{mark, shortID(e.ID), e.Name, e.URL})
		}
		lines := report.FormatTable([]string{"Sel", "ID", "Name", "URL"}, rows, nil)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
		return err
	})
}

func runURLsAdd(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(ctx context.Context, reg *savedurls.Registry) error {
		entry, err := reg.Add(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", entry.Name, shortID(entry.ID))
		return err
	})
}

func runURLsEdit(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(ctx context.Context, reg *savedurls.Registry) error {
		entry, err := reg.Resolve(args[0])
		if err != nil {
			return err
		}
		return reg.Edit(ctx, entry.ID, args[1], args[2])
	})
}

func runURLsRemove(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(ctx context.Context, reg *savedurls.Registry) error {
		for _, ref := range args {
			entry, err := reg.Resolve(ref)
			if err != nil {
				return err
			}
			if err := reg.Remove(ctx, entry.ID); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", entry.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func runURLsSelect(cmd *cobra.Command, args []string, selected bool) error {
	if !urlsSelectAll && len(args) == 0 {
		return fmt.Errorf("pass saved URL ids or names, or --all")
	}
	return withRegistry(cmd, func(ctx context.Context, reg *savedurls.Registry) error {
		if urlsSelectAll {
			if selected {
				return reg.SelectAll(ctx)
			}
			return reg.DeselectAll(ctx)
		}
		for _, ref := range args {
			entry, err := reg.Resolve(ref)
			if err != nil {
				return err
			}
			if err := reg.SetSelected(ctx, entry.ID, selected); err != nil {
				return err
			}
		}
		return nil
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
