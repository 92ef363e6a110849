package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/auditor/api"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/report"
)

// Flag variables.
var (
	flagFast     bool
	flagCacheTTL time.Duration
	flagPDF      string
)

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Audit a single URL and print the result as JSON",
	Long: `Audit runs one audit and writes the result JSON to stdout.

Examples:
  seoaudit audit https://example.com
  seoaudit audit https://example.com --fast
  seoaudit audit https://example.com --cache-ttl 0 --pdf report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().BoolVar(&flagFast, "fast", false, "Fast mode: shorter timeout, bounded parsing, no cache")
	auditCmd.Flags().DurationVar(&flagCacheTTL, "cache-ttl", 0, "Cache TTL for this audit (default: cache.ttl from config; 0 disables)")
	auditCmd.Flags().StringVar(&flagPDF, "pdf", "", "Also write a PDF report to this file")
}

func runAudit(cmd *cobra.Command, args []string) error {
	target := strings.TrimSpace(args[0])
	if !api.ValidURL(target) {
		return fmt.Errorf("invalid URL: %s (must start with http:// or https://)", target)
	}
	if flagCacheTTL < 0 {
		return fmt.Errorf("--cache-ttl must not be negative")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	a, err := newApp(cfg, logging.ModeRelease)
	if err != nil {
		return err
	}
	defer a.close()

	opts := a.analyzer.DefaultOptions()
	opts.Fast = flagFast
	if cmd.Flags().Changed("cache-ttl") {
		opts.CacheTTL = flagCacheTTL
	}

	res := a.analyzer.Analyze(cmd.Context(), target, opts)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if res.Failed() {
		return fmt.Errorf("audit failed: %s", res.Error)
	}

	if flagPDF != "" {
		pdf, err := report.RenderPDF(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagPDF, pdf, 0o644); err != nil {
			return fmt.Errorf("writing PDF: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Written: %s\n", flagPDF)
	}
	return nil
}
