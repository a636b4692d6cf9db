// Command agent4everything answers natural language questions against a
// SQLite database and ingests reference documents into a retrieval
// store.
//
// Configuration is read from an optional YAML file (--config), with the
// OpenAI API key taken from the OPENAI_API_KEY environment variable.
// A .env file in the working directory is loaded when present.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/luomsis/agent4everything/pkg/dbx"
	"github.com/luomsis/agent4everything/pkg/ingest"
	"github.com/luomsis/agent4everything/pkg/llm"
	"github.com/luomsis/agent4everything/pkg/nlsql"
	"github.com/luomsis/agent4everything/pkg/retrieval"
	"github.com/luomsis/agent4everything/pkg/workflow/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// appContext holds the flags and config shared by the subcommands.
type appContext struct {
	configPath string
	dbPath     string
	storePath  string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

// setup loads .env and the config file and builds the logger.
// Flag values beat config file values; config file values beat defaults.
func (app *appContext) setup() error {
	// Missing .env is fine; explicit config errors are not.
	_ = godotenv.Load()

	if app.configPath != "" {
		cfg, err := config.FromFile(app.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		app.cfg = cfg
	} else {
		app.cfg = config.New(nil)
	}

	if app.dbPath == "" {
		app.dbPath = app.cfg.String("database.path", "data.db")
	}
	if app.storePath == "" {
		app.storePath = app.cfg.String("store.path", "docs.db")
	}

	level := slog.LevelWarn
	if app.verbose {
		level = slog.LevelDebug
	}
	app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// openModel builds the LLM client from config and environment.
func (app *appContext) openModel() (llm.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	return llm.NewOpenAI(apiKey,
		llm.WithModel(app.cfg.String("llm.model", llm.DefaultModel)),
		llm.WithMaxTokens(int64(app.cfg.Int("llm.max_tokens", 1024))),
	)
}

func newRootCmd() *cobra.Command {
	app := &appContext{}

	root := &cobra.Command{
		Use:   "agent4everything",
		Short: "Ask questions of a SQL database in natural language",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&app.dbPath, "db", "", "path to the SQLite database")
	root.PersistentFlags().StringVar(&app.storePath, "store", "", "path to the document store")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAskCmd(app))
	root.AddCommand(newIngestCmd(app))
	root.AddCommand(newSchemaCmd(app))
	root.AddCommand(newSeedCmd(app))

	return root
}

func newAskCmd(app *appContext) *cobra.Command {
	var maxResults int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a natural language question with a generated SQL query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := dbx.Open(app.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			store, err := retrieval.NewSQLiteStore(app.storePath)
			if err != nil {
				return fmt.Errorf("open document store: %w", err)
			}
			defer store.Close()

			model, err := app.openModel()
			if err != nil {
				return err
			}

			pipeline, err := nlsql.New(db, store, model, nlsql.WithLogger(app.logger))
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context(), args[0], maxResults)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, result)
			}

			if !result.Success {
				fmt.Fprintln(cmd.OutOrStdout(), "Could not answer:", result.Error)
				if result.GeneratedSQL != "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Generated SQL:", result.GeneratedSQL)
				}
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "SQL:", result.GeneratedSQL)
			fmt.Fprintf(cmd.OutOrStdout(), "Rows: %d\n", len(result.Rows))
			for _, row := range result.Rows {
				line, err := json.Marshal(row)
				if err != nil {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), result.Explanation)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum rows to return (default 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newIngestCmd(app *appContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documents into the retrieval store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := retrieval.NewSQLiteStore(app.storePath)
			if err != nil {
				return fmt.Errorf("open document store: %w", err)
			}
			defer store.Close()

			files := make([]ingest.File, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				files = append(files, ingest.File{Name: path, Content: content})
			}

			pipeline, err := ingest.New(store, ingest.WithLogger(app.logger))
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context(), files)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, result)
			}

			for _, r := range result.Results {
				if r.Status == "ok" {
					fmt.Fprintf(cmd.OutOrStdout(), "ok     %s (%d chunks)\n", r.Name, r.Chunks)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "failed %s: %s\n", r.Name, r.Message)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d ingested, %d failed\n", result.Successful, result.Failed)

			if !result.Success {
				return fmt.Errorf("ingestion failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newSchemaCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := dbx.Open(app.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			schema, err := db.Schema(cmd.Context())
			if err != nil {
				return err
			}

			tables := make([]string, 0, len(schema))
			for name := range schema {
				tables = append(tables, name)
			}
			sort.Strings(tables)

			for _, table := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", table)
				for _, col := range schema[table] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s\n", col.Name, col.Type)
				}
			}
			return nil
		},
	}
}

func newSeedCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create and populate the sample database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := dbx.Open(app.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := db.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sample database ready:", app.dbPath)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
