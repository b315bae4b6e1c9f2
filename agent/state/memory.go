package state

// Memory is the per-run workflow memory: a mutable key/value mapping
// that remembers insertion order. One instance is created per run and
// mutated only by the single active stage, so no locking is needed.
// Concurrent runs must each own their own instance.
type Memory struct {
	keys   []string
	values map[string]any
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]any, 8),
	}
}

// Set writes a value under key. The first write of a key fixes its
// position in the key order; overwrites keep the original position.
func (m *Memory) Set(key string, val any) {
	if m.values == nil {
		m.values = make(map[string]any, 8)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = val
}

func (m *Memory) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Memory) Len() int {
	return len(m.keys)
}

// Keys returns the keys in write order.
func (m *Memory) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Snapshot returns a shallow copy of the mapping for the run report.
func (m *Memory) Snapshot() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
