package salesession

// orderedMap keeps insertion order so every fold over it is deterministic.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]*V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]*V)}
}

func (m *orderedMap[K, V]) getOrInsert(key K, init func() V) *V {
	if val, ok := m.values[key]; ok {
		return val
	}
	val := init()
	m.keys = append(m.keys, key)
	m.values[key] = &val
	return &val
}

func (m *orderedMap[K, V]) each(fn func(key K, val *V)) {
	for _, key := range m.keys {
		fn(key, m.values[key])
	}
}

func (m *orderedMap[K, V]) len() int {
	return len(m.keys)
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// add ignores empty values.
func (s *orderedSet) add(val string) {
	if val == "" {
		return
	}
	if _, ok := s.seen[val]; ok {
		return
	}
	s.seen[val] = struct{}{}
	s.items = append(s.items, val)
}

func (s *orderedSet) values() []string {
	return s.items
}
