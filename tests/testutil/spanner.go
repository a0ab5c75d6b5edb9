package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/models/m_category"
	"github.com/light-bringer/inventory-service/internal/models/m_order"
	"github.com/light-bringer/inventory-service/internal/models/m_outbox"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/models/m_stock_movement"
)

const defaultTestDatabase = "projects/test-project/instances/test-instance/databases/inventory-test"

// SpannerAvailable reports whether an emulator is configured for this run.
func SpannerAvailable() bool {
	return os.Getenv("SPANNER_EMULATOR_HOST") != ""
}

// SetupSpannerTest creates a client against a clean test database. The test is
// skipped when no emulator is configured.
func SetupSpannerTest(t *testing.T) *spanner.Client {
	t.Helper()

	if !SpannerAvailable() {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	client, err := spanner.NewClient(context.Background(), GetTestSpannerDB())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)
	t.Cleanup(func() {
		CleanDatabase(t, client)
		client.Close()
	})
	return client
}

// GetTestSpannerDB returns the test database name, overridable by SPANNER_TEST_DATABASE.
func GetTestSpannerDB() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return defaultTestDatabase
}

// CleanDatabase truncates all tables. Order lines and reservations go with
// their interleaved parent.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	_, err := client.Apply(context.Background(), []*spanner.Mutation{
		spanner.Delete(m_outbox.TableName, spanner.AllKeys()),
		spanner.Delete(m_stock_movement.TableName, spanner.AllKeys()),
		spanner.Delete(m_order.TableName, spanner.AllKeys()),
		spanner.Delete(m_product.TableName, spanner.AllKeys()),
		spanner.Delete(m_category.TableName, spanner.AllKeys()),
	})
	require.NoError(t, err, "failed to clean database")
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, expectedCount int) {
	t.Helper()

	iter := client.Single().Query(context.Background(), spanner.Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to query row count")

	var count int64
	require.NoError(t, row.Columns(&count), "failed to parse count")
	require.Equal(t, int64(expectedCount), count, "unexpected row count in table %s", table)
}
