// Package main provides the ariadne CLI entry point.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reasy/ariadne/pkg/config"
	"github.com/reasy/ariadne/pkg/schema"
	"github.com/reasy/ariadne/pkg/validator"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ariadne",
		Short: "Ariadne - Cypher schema validation for the Kubernetes resource graph",
		Long: `Ariadne statically validates Cypher queries against the Kubernetes
resource graph schema before they are sent to the graph store.

A query is checked for syntax, for constructs the downstream engine cannot
execute, and for relationship patterns the schema does not permit. The
result is either admission or a structured diagnostic.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ariadne v%s (%s)\n", version, commit)
		},
	})

	var schemaPath string
	var quiet bool
	validateCmd := &cobra.Command{
		Use:   "validate [query]",
		Short: "Validate a Cypher query against the graph schema",
		Long: `Validate a Cypher query. The query is read from the argument, or from
stdin when the argument is "-" or absent. Exit status is 0 when the query is
admitted and 1 with a diagnostic on stderr when it is rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, schemaPath, quiet)
		},
	}
	validateCmd.Flags().StringVar(&schemaPath, "schema", "", "schema file (overrides ARIADNE_SCHEMA_PATH)")
	validateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the admission message")
	rootCmd.AddCommand(validateCmd)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the loaded graph schema",
		Long:  "Print the loaded schema as (:Src)-[:Edge]->(:Dst) declarations, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			fmt.Print(s.Declarations())
			return nil
		},
	}
	schemaCmd.Flags().StringVar(&schemaPath, "schema", "", "schema file (overrides ARIADNE_SCHEMA_PATH)")
	rootCmd.AddCommand(schemaCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runValidate(args []string, schemaPath string, quiet bool) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	query, err := readQuery(args)
	if err != nil {
		return err
	}

	s, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}

	v := validator.New(s,
		validator.WithLogger(cfg.Logger()),
		validator.WithCache(cfg.CacheSize, cfg.CacheTTL),
	)
	if verdict := v.Validate(query); verdict != nil {
		fmt.Fprintln(os.Stderr, verdict.Error())
		os.Exit(1)
	}
	if !quiet {
		fmt.Println("OK")
	}
	return nil
}

func readQuery(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read query from stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no query given")
	}
	return string(data), nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path != "" {
		return schema.Load(path)
	}
	return schema.FromEnv()
}
