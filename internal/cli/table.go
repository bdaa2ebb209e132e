package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jacentio/constellation/internal/app"
	"github.com/jacentio/constellation/internal/envs"
	"github.com/jacentio/constellation/store"
)

// TableSummary describes the table layout derived from the registry.
type TableSummary struct {
	Table        string   `yaml:"table" json:"table"`
	PartitionKey string   `yaml:"partitionKey" json:"partitionKey"`
	RangeKey     string   `yaml:"rangeKey" json:"rangeKey"`
	Indexes      []string `yaml:"indexes,omitempty" json:"indexes,omitempty"`
	Created      *bool    `yaml:"created,omitempty" json:"created,omitempty"`
}

type createTableOptions struct {
	table   string
	dryRun  bool
	maxWait time.Duration
}

// NewCreateTableCommand creates the create-table command.
func NewCreateTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createTableOptions{}

	cmd := &cobra.Command{
		Use:   "create-table",
		Short: "Create the DynamoDB table and its relation indexes",
		Long: `Create the single constellation table with one global secondary
index per registered relation attribute. An existing table is left as is.

Table settings come from CONSTELLATION_TABLE, CONSTELLATION_PARTITION_KEY
and CONSTELLATION_INDEX_SUFFIX, loaded from the environment or a dotenv file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateTable(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "table name (overrides CONSTELLATION_TABLE)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the table layout without calling DynamoDB")
	cmd.Flags().DurationVar(&opts.maxWait, "wait", 5*time.Minute, "maximum time to wait for the table to become active")

	return cmd
}

func runCreateTable(cmd *cobra.Command, rootOpts *RootOptions, opts *createTableOptions) error {
	var files []string
	if rootOpts.EnvFile != "" {
		files = append(files, rootOpts.EnvFile)
	}
	env, err := envs.Load(files...)
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if rootOpts.Verbose {
		env.LogLevel = "debug"
	}
	logger := env.Logger(cmd.ErrOrStderr())

	cfg := env.StoreConfig()
	if opts.table != "" {
		cfg.TableName = opts.table
	}

	r, err := app.NewRegistry()
	if err != nil {
		return err
	}
	input, err := store.TableDefinition(cfg, r)
	if err != nil {
		return err
	}
	summary := summarize(input)

	if opts.dryRun {
		return write(cmd.OutOrStdout(), rootOpts.Format, summary)
	}

	client, err := env.DynamoDB(cmd.Context())
	if err != nil {
		return fmt.Errorf("aws config: %w", err)
	}
	created, err := store.EnsureTable(cmd.Context(), client, input, opts.maxWait, logger)
	if err != nil {
		return err
	}
	logger.Debug("create-table finished", slog.Bool("created", created))

	summary.Created = &created
	return write(cmd.OutOrStdout(), rootOpts.Format, summary)
}

func summarize(input *dynamodb.CreateTableInput) TableSummary {
	summary := TableSummary{
		Table:        aws.ToString(input.TableName),
		PartitionKey: aws.ToString(input.KeySchema[0].AttributeName),
		RangeKey:     aws.ToString(input.KeySchema[1].AttributeName),
	}
	for _, gsi := range input.GlobalSecondaryIndexes {
		summary.Indexes = append(summary.Indexes, aws.ToString(gsi.IndexName))
	}
	return summary
}
