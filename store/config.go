package store

const (
	defaultTableName        = "constellation"
	defaultPartitionKeyAttr = AttrProjectEntity
	defaultIndexSuffix      = "-index"
)

// Config holds configuration for the Store.
type Config struct {
	// TableName is the single DynamoDB table holding every partition.
	// Default: "constellation"
	TableName string

	// PartitionKeyAttr is the hash key attribute carrying the partition name.
	// It is also the range key of every relation index.
	// Default: "projectEntity"
	PartitionKeyAttr string

	// IndexSuffix is appended to a relation attribute name to form its
	// secondary index name (e.g. "lineUserId-index").
	// Default: "-index"
	IndexSuffix string
}

// DefaultConfig returns the default single-table layout.
func DefaultConfig() Config {
	return Config{
		TableName:        defaultTableName,
		PartitionKeyAttr: defaultPartitionKeyAttr,
		IndexSuffix:      defaultIndexSuffix,
	}
}

// IndexName returns the secondary index serving queries on a relation attribute.
func (c Config) IndexName(field string) string {
	return field + c.IndexSuffix
}

// validate fills in defaults for empty values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = defaultTableName
	}
	if c.PartitionKeyAttr == "" {
		c.PartitionKeyAttr = defaultPartitionKeyAttr
	}
	if c.IndexSuffix == "" {
		c.IndexSuffix = defaultIndexSuffix
	}
}
