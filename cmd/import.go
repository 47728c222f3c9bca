package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openstudydata/ddiwalk/config"
	"github.com/openstudydata/ddiwalk/importer"
	"github.com/openstudydata/ddiwalk/mapping"
	"github.com/openstudydata/ddiwalk/reconcile"
	"github.com/openstudydata/ddiwalk/registry"
)

var (
	configFile      string
	catalogURL      string
	apiKey          string
	license         string
	profileFile     string
	allowDuplicates bool
	override        bool
)

var importCmd = &cobra.Command{
	Use:   "import <path-or-url>",
	Short: "Import a DDI document into the catalog",
	Long: `Import one DDI XML document, given as a file path or an http(s) URL.

The document is extracted through the embedded DDI mapping profile,
normalized, and reconciled against the catalog: a new identifier is
created, a known identifier is updated (with --override) or rejected as a
duplicate.

Examples:
  ddiwalk import study.xml --catalog-url https://data.example.org
  ddiwalk import https://microdata.example.org/ddibrowser/123/export --override
  DDIWALK_API_KEY=... ddiwalk import study.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&configFile, "config", "", "Config file (default: ~/.ddiwalk/config.yaml)")
	importCmd.Flags().StringVar(&catalogURL, "catalog-url", "", "Catalog base URL")
	importCmd.Flags().StringVar(&apiKey, "api-key", "", "Catalog API key (default: $DDIWALK_API_KEY)")
	importCmd.Flags().StringVar(&license, "license", "", "License id override for this import")
	importCmd.Flags().StringVar(&profileFile, "profile-file", "", "Custom mapping profile YAML file")
	importCmd.Flags().BoolVar(&allowDuplicates, "allow-duplicates", false, "Create a suffixed record when the identifier is taken")
	importCmd.Flags().BoolVar(&override, "override", false, "Update an existing record instead of rejecting")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.CatalogURL == "" {
		return fmt.Errorf("no catalog URL configured (use --catalog-url or the config file)")
	}

	fields, err := loadFieldSet()
	if err != nil {
		return err
	}

	reg := registry.NewClient(cfg.CatalogURL, cfg.APIKey)
	imp := importer.New(fields, reg, cfg)

	result, err := imp.Run(cmd.Context(), args[0], importer.Options{License: license})
	if err != nil {
		return err
	}

	switch result.Action {
	case reconcile.ActionReject:
		fmt.Fprintf(os.Stderr, "Rejected: %s\n", result.Reason)
	default:
		fmt.Printf("%s\n", result.ID)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	// Flags and environment override the file.
	if catalogURL != "" {
		cfg.CatalogURL = catalogURL
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	} else if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("DDIWALK_API_KEY")
	}
	if allowDuplicates {
		cfg.AllowDuplicates = true
	}
	if override {
		cfg.OverrideExisting = true
	}
	return cfg, nil
}

func loadFieldSet() (*mapping.FieldSet, error) {
	if profileFile != "" {
		p, err := mapping.LoadProfile(profileFile)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		return p.Build()
	}
	return mapping.DefaultFieldSet()
}
