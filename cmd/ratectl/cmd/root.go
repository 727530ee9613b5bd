// Package cmd provides the CLI commands for ratectl.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/internal/logging"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	catalogFile string
	format      string
	verbose     bool

	log *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ratectl",
		Short: "Price rooms against a hotel catalog file",
		Long: `ratectl runs the rate engine against a catalog document (JSON or YAML)
without a server or database.

Examples:
  ratectl validate -c seaside.yaml
  ratectl quote -c seaside.yaml --room dlx --season high --channel ota --plan bb
  ratectl legacy -c seaside.json --room std --season high --rate-modifier genius
  ratectl matrix -c seaside.yaml --plan bb --format json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			if opts.verbose {
				cfg.Level = "debug"
			} else {
				cfg.Level = "warn"
			}
			log, err := logging.New(cfg)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.catalogFile, "catalog", "c", "", "catalog document (.json, .yaml, .yml)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newValidateCmd(opts),
		newQuoteCmd(opts),
		newLegacyCmd(opts),
		newMatrixCmd(opts),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

// loadBundle reads and validates the catalog file.
func (o *rootOptions) loadBundle() (*factory.Bundle, error) {
	if o.catalogFile == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	data, err := os.ReadFile(o.catalogFile)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	f := factory.NewCatalogFactory()
	var b *factory.Bundle
	switch strings.ToLower(filepath.Ext(o.catalogFile)) {
	case ".yaml", ".yml":
		b, err = f.ParseCatalogYAML(data)
	default:
		b, err = f.ParseCatalog(string(data))
	}
	if err != nil {
		return nil, err
	}
	o.log.Debug("catalog loaded",
		zap.String("file", o.catalogFile),
		zap.String("property", string(b.Catalog.Property.ID)),
		zap.Int("modifiers", len(b.Catalog.Modifiers)),
	)
	return b, nil
}

func (o *rootOptions) jsonOutput() (bool, error) {
	switch o.format {
	case "text":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("unknown format %q (text, json)", o.format)
	}
}
