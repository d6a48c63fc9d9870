package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		name  string
		a     IDMap
		b     IDMap
		equal bool
	}{
		{
			name:  "Equal Single Column",
			a:     IDMap{"id": 1},
			b:     IDMap{"id": 1},
			equal: true,
		},
		{
			name:  "Equal Multi Column Any Order",
			a:     IDMap{"order_id": 1, "user_id": 2},
			b:     IDMap{"user_id": 2, "order_id": 1},
			equal: true,
		},
		{
			name:  "Different Values",
			a:     IDMap{"id": 1},
			b:     IDMap{"id": 2},
			equal: false,
		},
		{
			name:  "Missing Column",
			a:     IDMap{"id": 1, "tenant": "a"},
			b:     IDMap{"id": 1},
			equal: false,
		},
		{
			name:  "Deep Values",
			a:     IDMap{"id": []any{1, 2}},
			b:     IDMap{"id": []any{1, 2}},
			equal: true,
		},
		{
			name:  "Both Empty",
			a:     IDMap{},
			b:     IDMap{},
			equal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, CompareIDs(tt.a, tt.b))
		})
	}
}

func TestColumnResolve(t *testing.T) {
	column := &Column{DatabaseName: "post_id", ReferencedColumn: "id"}

	t.Run("Entity Map Operand", func(t *testing.T) {
		entity := map[string]any{"id": 42, "title": "hello"}
		assert.Equal(t, 42, column.Resolve(entity))
	})

	t.Run("IDMap Operand", func(t *testing.T) {
		assert.Equal(t, 7, column.Resolve(IDMap{"id": 7}))
	})

	t.Run("Custom Resolver", func(t *testing.T) {
		type post struct{ ID int }
		custom := &Column{
			DatabaseName: "post_id",
			ReferencedValue: func(operand any) any {
				return operand.(*post).ID
			},
		}
		assert.Equal(t, 3, custom.Resolve(&post{ID: 3}))
	})

	t.Run("Unresolvable Operand", func(t *testing.T) {
		assert.Nil(t, column.Resolve("not a map"))
	})
}

func TestColumnValueMap(t *testing.T) {
	column := &Column{DatabaseName: "category_id"}
	assert.Equal(t, IDMap{"category_id": 5}, column.ValueMap(5))
}

func TestMapValue(t *testing.T) {
	value := MapValue("categories")

	t.Run("Set Property", func(t *testing.T) {
		v, ok := value(map[string]any{"categories": []any{"a"}})
		assert.True(t, ok)
		assert.Equal(t, []any{"a"}, v)
	})

	t.Run("Explicit Nil Is Set", func(t *testing.T) {
		v, ok := value(map[string]any{"categories": nil})
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Unset Property", func(t *testing.T) {
		_, ok := value(map[string]any{"title": "x"})
		assert.False(t, ok)
	})

	t.Run("Non Map Entity", func(t *testing.T) {
		_, ok := value(42)
		assert.False(t, ok)
	})
}

func TestMapIDMap(t *testing.T) {
	idOf := MapIDMap("id")

	t.Run("Identity Present", func(t *testing.T) {
		assert.Equal(t, IDMap{"id": 1}, idOf(map[string]any{"id": 1}))
	})

	t.Run("No Identity Yet", func(t *testing.T) {
		assert.Nil(t, idOf(map[string]any{"name": "new"}))
		assert.Nil(t, idOf(map[string]any{"id": nil}))
	})

	t.Run("Composite Identity Requires All Columns", func(t *testing.T) {
		composite := MapIDMap("order_id", "user_id")
		assert.Nil(t, composite(map[string]any{"order_id": 1}))
		assert.Equal(t,
			IDMap{"order_id": 1, "user_id": 2},
			composite(map[string]any{"order_id": 1, "user_id": 2}),
		)
	})
}

func TestRelationCompareIDs(t *testing.T) {
	t.Run("Default Comparator", func(t *testing.T) {
		rel := &Relation{}
		assert.True(t, rel.CompareIDs(IDMap{"id": 1}, IDMap{"id": 1}))
	})

	t.Run("Custom Comparator", func(t *testing.T) {
		rel := &Relation{
			Compare: func(a, b IDMap) bool { return true },
		}
		assert.True(t, rel.CompareIDs(IDMap{"id": 1}, IDMap{"id": 2}))
	})
}
