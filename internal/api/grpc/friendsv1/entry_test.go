package friendsv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestNewList(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{ID: "a", Username: "alice", MutualCount: 2},
		{ID: "b", Username: "bob"},
	}

	t.Run("without counts", func(t *testing.T) {
		t.Parallel()

		list := NewList(entries, false)
		require.Len(t, list.Values, 2)
		fields := list.Values[0].GetStructValue().GetFields()
		assert.Equal(t, "a", fields["id"].GetStringValue())
		assert.Equal(t, "alice", fields["username"].GetStringValue())
		assert.NotContains(t, fields, "mutual_count")
	})

	t.Run("with counts", func(t *testing.T) {
		t.Parallel()

		list := NewList(entries, true)
		assert.Equal(t, float64(2), list.Values[0].GetStructValue().GetFields()["mutual_count"].GetNumberValue())
		assert.Equal(t, float64(0), list.Values[1].GetStructValue().GetFields()["mutual_count"].GetNumberValue())

		parsed, err := ParseList(list)
		require.NoError(t, err)
		assert.Equal(t, entries, parsed)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		parsed, err := ParseList(NewList(nil, false))
		require.NoError(t, err)
		assert.Empty(t, parsed)
	})
}

func TestParseList_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		list *structpb.ListValue
	}{
		{
			name: "element is not a struct",
			list: &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("alice")}},
		},
		{
			name: "missing id",
			list: &structpb.ListValue{Values: []*structpb.Value{
				structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
					"username": structpb.NewStringValue("alice"),
				}}),
			}},
		},
		{
			name: "id is not a string",
			list: &structpb.ListValue{Values: []*structpb.Value{
				structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
					"id": structpb.NewNumberValue(1),
				}}),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseList(tt.list)
			assert.Error(t, err)
		})
	}
}
