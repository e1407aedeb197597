package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/sources/browser"
)

var (
	listType     string
	listCategory string
	listSearch   string
	listJSON     bool

	exportOut string
	clearYes  bool
)

// listCmd prints the bookmarks matching the filters
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// statsCmd prints collection statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bookmark statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// exportCmd writes the export document
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookmarks as JSON",
	Long: `Export the whole collection as a JSON document:
{"bookmarks": [...], "exportDate": "...", "version": "1.0"}

Writes to stdout unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// importCmd merges an export document into the collection
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import bookmarks from an export file",
	Long: `Import bookmarks from a file produced by export.

Bookmarks whose id already exists are skipped. New ones are appended.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// importHTMLCmd adds the links of a browser bookmarks export
var importHTMLCmd = &cobra.Command{
	Use:   "import-html FILE",
	Short: "Import bookmarks from a browser export (bookmarks.html)",
	Long: `Import the http(s) links of a Netscape bookmark file, as exported by
Firefox, Chrome, Safari or Edge.

Folder names become categories and TAGS become tags. Links already imported
are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportHTML,
}

// clearCmd deletes every bookmark
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "Only this content type (lesson, prompt, module, usecase, tool)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only this category")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive text search over title, description and tags")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")

	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deletion of all bookmarks")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	items := s.Store.Query(domain.Filter{
		Type:     domain.ContentType(listType),
		Category: listCategory,
		Search:   listSearch,
	})

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCATEGORY\tTITLE")
	for _, b := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Type, b.Category, b.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d bookmark(s)\n", len(items))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	stats := s.Store.Stats()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Total:          %d\n", stats.Total)
	fmt.Fprintf(out, "Added this week: %d\n", stats.RecentlyAdded)

	fmt.Fprintln(out, "\nBy type:")
	for _, info := range domain.ContentTypes() {
		if n := stats.ByType[info.Type]; n > 0 {
			fmt.Fprintf(out, "  %s %-10s %d\n", info.Icon, info.Label, n)
		}
	}

	categories := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintln(out, "\nBy category:")
	for _, c := range categories {
		fmt.Fprintf(out, "  %-20s %d\n", c, stats.ByCategory[c])
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.Store.Export().Encode()
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if exportOut == "" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✅ exported %d bookmark(s) to %s\n", s.Store.Len(), exportOut)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	added, err := s.Store.Import(ctx, raw)
	if err != nil {
		if errors.Is(err, bookmarks.ErrParse) {
			return fmt.Errorf("%s is not a valid export file: %w", args[0], err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d bookmark(s), %d total\n", added, s.Store.Len())
	return nil
}

func runImportHTML(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	candidates, err := browser.Parse(f)
	if err != nil {
		return fmt.Errorf("%s is not a bookmarks file: %w", args[0], err)
	}

	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	added, skipped, persistErr := s.Store.AddAll(ctx, candidates)
	if persistErr != nil && !errors.Is(persistErr, bookmarks.ErrPersistence) {
		return persistErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d link(s), skipped %d, %d total\n", added, skipped, s.Store.Len())
	return persistErr
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return errors.New("refusing to delete all bookmarks without --yes")
	}

	ctx := commandContext(cmd)
	s, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n := s.Store.Len()
	if err := s.Store.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ deleted %d bookmark(s)\n", n)
	return nil
}
