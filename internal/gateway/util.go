package gateway

import (
	"encoding/json"
	"sort"
)

// mustMarshal marshals v to json.RawMessage, panicking on error.
// Only for statically-known types that cannot fail.
func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("gateway: mustMarshal: " + err.Error())
	}
	return data
}

func sortBySequence(events []sequencedEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].Sequence < events[j].Sequence })
}
