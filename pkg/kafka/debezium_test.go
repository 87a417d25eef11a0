package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityUpdateMessage = `{
	"payload": {
		"before": {"id": 42, "name": "Acme Corp", "primary_ext": "Org", "link_count": 3},
		"after": {"id": 42, "name": "Acme Corporation", "primary_ext": "Org", "link_count": 3, "updated_at": "2026-08-30T12:00:00Z"},
		"source": {"connector": "postgresql", "db": "graft", "schema": "public", "table": "entities"},
		"op": "u",
		"ts_ms": 1756555200000
	}
}`

func TestParseDebeziumMessage(t *testing.T) {
	envelope, err := ParseDebeziumMessage([]byte(entityUpdateMessage))
	require.NoError(t, err)

	assert.Equal(t, "entities", envelope.Payload.Source.Table)
	assert.True(t, envelope.Payload.IsUpdate())
	assert.False(t, envelope.Payload.IsCreate())
	assert.False(t, envelope.Payload.IsDelete())
	assert.Equal(t, int64(1756555200000), envelope.Payload.Timestamp().UnixMilli())

	row, err := envelope.Payload.ParseEntityRow()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(42), row.ID)
	assert.Equal(t, "Acme Corporation", row.Name)

	before, err := envelope.Payload.ParseEntityRowBefore()
	require.NoError(t, err)
	require.NotNil(t, before)
	assert.Equal(t, "Acme Corp", before.Name)
}

func TestParseDebeziumMessage_Invalid(t *testing.T) {
	_, err := ParseDebeziumMessage([]byte("not json"))
	assert.Error(t, err)
}

func TestDebeziumPayload_Operations(t *testing.T) {
	tests := []struct {
		op       string
		isCreate bool
		isUpdate bool
		isDelete bool
	}{
		{"c", true, false, false},
		{"r", true, false, false},
		{"u", false, true, false},
		{"d", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			p := DebeziumPayload{Op: tt.op}
			assert.Equal(t, tt.isCreate, p.IsCreate())
			assert.Equal(t, tt.isUpdate, p.IsUpdate())
			assert.Equal(t, tt.isDelete, p.IsDelete())
		})
	}
}

func TestParseEntityRow_NullAfter(t *testing.T) {
	p := DebeziumPayload{After: []byte("null")}

	row, err := p.ParseEntityRow()
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestEntityRow_Flags(t *testing.T) {
	deletedAt := "2026-08-30T12:00:00Z"
	mergedID := int64(7)
	empty := ""

	assert.False(t, (&EntityRow{}).IsDeleted())
	assert.False(t, (&EntityRow{DeletedAt: &empty}).IsDeleted())
	assert.True(t, (&EntityRow{DeletedAt: &deletedAt}).IsDeleted())

	assert.False(t, (&EntityRow{}).IsMerged())
	assert.True(t, (&EntityRow{MergedID: &mergedID}).IsMerged())
}

func TestEntityRow_ToEntity(t *testing.T) {
	deletedAt := "2026-08-30 12:00:00"
	row := &EntityRow{
		ID:         42,
		Name:       "Acme Corporation",
		PrimaryExt: "Org",
		LinkCount:  3,
		CreatedAt:  "2020-01-15T08:30:00Z",
		UpdatedAt:  "2026-08-30T12:00:00Z",
		DeletedAt:  &deletedAt,
	}

	entity := row.ToEntity()

	assert.Equal(t, int64(42), entity.ID)
	assert.Equal(t, "Org", entity.PrimaryExt)
	assert.Equal(t, 2020, entity.CreatedAt.Year())
	require.NotNil(t, entity.DeletedAt)
	assert.Equal(t, 2026, entity.DeletedAt.Year())
}

func TestRelationshipRow_ToRelationship(t *testing.T) {
	amount := int64(5000)
	row := &RelationshipRow{
		ID:         100,
		Entity1ID:  1,
		Entity2ID:  2,
		CategoryID: 5,
		Amount:     &amount,
		CreatedAt:  "2024-06-01T00:00:00Z",
		UpdatedAt:  "2024-06-01T00:00:00Z",
	}

	rel := row.ToRelationship()

	assert.Equal(t, int64(100), rel.ID)
	assert.Equal(t, int64(1), rel.Entity1ID)
	assert.Equal(t, int64(2), rel.Entity2ID)
	assert.Equal(t, 5, rel.CategoryID)
	require.NotNil(t, rel.Amount)
	assert.Equal(t, int64(5000), *rel.Amount)
	assert.Nil(t, rel.DeletedAt)
}

func TestIncomingMessage_Tombstone(t *testing.T) {
	assert.True(t, (&IncomingMessage{}).IsTombstone())
	assert.False(t, (&IncomingMessage{Value: []byte("{}")}).IsTombstone())
}

func TestIncomingMessage_SourceTable(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(entityUpdateMessage)}

	assert.Equal(t, "", msg.SourceTable())

	require.NoError(t, msg.ParseEnvelope())
	assert.Equal(t, "entities", msg.SourceTable())
}
