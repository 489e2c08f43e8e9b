package draft

import "sync"

// Memory is a process-local Provider. Drafts vanish with the process.
type Memory struct {
	mu    sync.Mutex
	slots map[string]map[Key][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[string]map[Key][]byte{}}
}

func (m *Memory) Backend(namespace string) Backend {
	return &memoryBackend{m: m, ns: namespace}
}

type memoryBackend struct {
	m  *Memory
	ns string
}

func (b *memoryBackend) Get(key Key) ([]byte, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	v, ok := b.m.slots[b.ns][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *memoryBackend) Put(key Key, value []byte) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	ns, ok := b.m.slots[b.ns]
	if !ok {
		ns = map[Key][]byte{}
		b.m.slots[b.ns] = ns
	}
	ns[key] = append([]byte(nil), value...)
	return nil
}

func (b *memoryBackend) Delete(keys ...Key) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	for _, k := range keys {
		delete(b.m.slots[b.ns], k)
	}
	return nil
}
