package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Epoch is 2026-01-01T00:00:00Z in unix milliseconds.
const Epoch int64 = 1767225600000

const (
	nodeBits     = 10
	sequenceBits = 12

	MaxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits
)

// ID is a snowflake that travels over JSON as a decimal string.
type ID int64

func (id ID) Int64() int64 { return int64(id) }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Time returns the creation time encoded in the ID.
func (id ID) Time() time.Time { return Time(int64(id)) }

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("snowflake: expected string id, got %s", string(data))
	}
	n, err := Parse(s)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

// Ptr converts an optional raw id.
func Ptr(v *int64) *ID {
	if v == nil {
		return nil
	}
	id := ID(*v)
	return &id
}

// IDs converts raw ids for JSON output.
func IDs(raw []int64) []ID {
	out := make([]ID, len(raw))
	for i, v := range raw {
		out[i] = ID(v)
	}
	return out
}

// Parse parses a decimal snowflake string. Zero and negative values are rejected.
func Parse(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snowflake: invalid id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("snowflake: invalid id %q", s)
	}
	return n, nil
}

// Time returns the wall-clock time embedded in a raw snowflake.
func Time(id int64) time.Time {
	return time.UnixMilli((id >> timestampShift) + Epoch)
}

// Generator hands out monotonically increasing IDs for one node.
type Generator struct {
	mu       sync.Mutex
	node     int64
	sequence int64
	lastTime int64
	now      func() int64
}

// NewGenerator creates a generator for the given node (0..MaxNode).
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > MaxNode {
		return nil, fmt.Errorf("snowflake: node must be between 0 and %d", MaxNode)
	}
	return &Generator{
		node: node,
		now:  func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Generate returns the next ID.
func (g *Generator) Generate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now() - Epoch
	if ts < g.lastTime {
		// Clock went backwards; keep issuing from the last known tick.
		ts = g.lastTime
	}

	if ts == g.lastTime {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			for ts <= g.lastTime {
				ts = g.now() - Epoch
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = ts

	return ID(ts<<timestampShift | g.node<<nodeShift | g.sequence)
}

// Next is shorthand for Generate().Int64().
func (g *Generator) Next() int64 {
	return g.Generate().Int64()
}
