package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDBPath(t *testing.T) {
	t.Run("valid name", func(t *testing.T) {
		p, err := parseDBPath("projects/test-project/instances/dev-instance/databases/inventory-db")
		require.NoError(t, err)
		assert.Equal(t, dbPath{Project: "test-project", Instance: "dev-instance", Database: "inventory-db"}, p)
		assert.Equal(t, "projects/test-project/instances/dev-instance", p.instanceName())
		assert.Equal(t, "projects/test-project/instances/dev-instance/databases/inventory-db", p.String())
	})

	for _, bad := range []string{
		"",
		"inventory-db",
		"projects/p/instances/i",
		"projects/p/instance/i/databases/d",
		"projects//instances/i/databases/d",
	} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := parseDBPath(bad)
			assert.Error(t, err)
		})
	}
}

func TestSplitDDLStatements(t *testing.T) {
	ddl := `-- header
CREATE TABLE a (
    id STRING(36) NOT NULL,
) PRIMARY KEY (id);

-- index
CREATE INDEX idx_a ON a(id);
`
	stmts := splitDDLStatements(ddl)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (\nid STRING(36) NOT NULL,\n) PRIMARY KEY (id)", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", stmts[1])

	assert.Empty(t, splitDDLStatements("-- nothing here\n\n"))
}
