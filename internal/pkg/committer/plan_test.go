package committer

import (
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
)

func TestPlan_Add(t *testing.T) {
	t.Run("skips nil mutations", func(t *testing.T) {
		plan := NewPlan()
		plan.Add(nil)
		plan.Add(nil, nil)

		assert.Zero(t, plan.Len())
		assert.Empty(t, plan.Mutations())
	})

	t.Run("keeps aggregate row ahead of its outbox rows", func(t *testing.T) {
		product := spanner.Insert("products", []string{"product_id"}, []interface{}{"p1"})
		events := []*spanner.Mutation{
			spanner.Insert("outbox_events", []string{"event_id"}, []interface{}{"e1"}),
			nil,
			spanner.Insert("outbox_events", []string{"event_id"}, []interface{}{"e2"}),
		}

		plan := NewPlan()
		plan.Add(product)
		plan.Add(events...)

		assert.Equal(t, 3, plan.Len())
		assert.Same(t, product, plan.Mutations()[0])
		assert.Same(t, events[2], plan.Mutations()[2])
	})
}

func TestVersionGuard_Column(t *testing.T) {
	assert.Equal(t, "version", VersionGuard{Table: "orders"}.column())
	assert.Equal(t, "row_version", VersionGuard{Table: "orders", Column: "row_version"}.column())
}

