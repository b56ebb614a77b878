package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_CollectsOptions(t *testing.T) {
	q := Build(
		WithBusinessID(7),
		WithConditionIn("status", []string{"new", "contacted"}),
		WithWhere("created_at > ?", "2026-01-01"),
		WithOrderDesc("created_at"),
		WithLimit(20),
		WithOffset(40),
	)

	conds := q.Conditions()
	assert.Len(t, conds, 2)
	assert.Equal(t, "business_id", conds[0].Field())
	assert.Equal(t, int64(7), conds[0].Value())
	assert.False(t, conds[0].In())
	assert.True(t, conds[1].In())

	clauses := q.Clauses()
	assert.Len(t, clauses, 1)
	assert.Equal(t, "created_at > ?", clauses[0].SQL())
	assert.Equal(t, []any{"2026-01-01"}, clauses[0].Args())

	assert.Equal(t, 20, q.LimitValue())
	assert.Equal(t, 40, q.OffsetValue())
	assert.False(t, q.Orders()[0].Ascending())
}

func TestBuild_AccessorsReturnCopies(t *testing.T) {
	q := Build(WithID(1))
	conds := q.Conditions()
	conds[0] = Condition{field: "other"}

	assert.Equal(t, "id", q.Conditions()[0].Field())
}

func TestWithNewestFirst(t *testing.T) {
	orders := Build(WithNewestFirst()).Orders()

	assert.Len(t, orders, 2)
	assert.Equal(t, "created_at", orders[0].Field())
	assert.Equal(t, "id", orders[1].Field())
}

func TestWithParam(t *testing.T) {
	q := Build(WithParam("resolved", true))

	v, ok := q.Param("resolved")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = q.Param("missing")
	assert.False(t, ok)
}
