package friendsv1

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldID          = "id"
	fieldUsername    = "username"
	fieldMutualCount = "mutual_count"
)

// Entry is one element of a user list. MutualCount is only sent by
// GetRecommendations and is zero elsewhere.
type Entry struct {
	ID          string
	Username    string
	MutualCount int
}

// NewList encodes entries as a list of structs. mutual_count is written only
// when withCount is set.
func NewList(entries []Entry, withCount bool) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(entries))
	for _, e := range entries {
		fields := map[string]*structpb.Value{
			fieldID:       structpb.NewStringValue(e.ID),
			fieldUsername: structpb.NewStringValue(e.Username),
		}
		if withCount {
			fields[fieldMutualCount] = structpb.NewNumberValue(float64(e.MutualCount))
		}
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: fields}))
	}
	return &structpb.ListValue{Values: values}
}

func ParseList(list *structpb.ListValue) ([]Entry, error) {
	entries := make([]Entry, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("entry %d: not a struct", i)
		}

		id, ok := s.GetFields()[fieldID].GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("entry %d: missing %s", i, fieldID)
		}

		entry := Entry{
			ID:       id.StringValue,
			Username: s.GetFields()[fieldUsername].GetStringValue(),
		}
		if n, ok := s.GetFields()[fieldMutualCount].GetKind().(*structpb.Value_NumberValue); ok {
			entry.MutualCount = int(n.NumberValue)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
