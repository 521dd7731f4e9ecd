package topicmgr

import (
	"sort"
	"sync"
	"time"
)

// Manager is a concurrency-safe catalogue of topics.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]RegistryEntry
	now     func() time.Time
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]RegistryEntry),
		now:     time.Now,
	}
}

// Register validates and stores a topic. Registering the same definition
// twice is allowed; registering a different definition under an existing
// name is an error.
func (m *Manager) Register(topic Topic) error {
	if err := Validate(topic); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[topic.Name()]; ok {
		if existing.Topic.Module() == topic.Module() && existing.Topic.Description() == topic.Description() {
			return nil
		}
		return &TopicError{Type: ErrorTypeDuplicate, Topic: topic.Name(), Message: "already registered by module " + existing.Topic.Module()}
	}

	m.entries[topic.Name()] = RegistryEntry{Topic: topic, RegisteredAt: m.now()}
	return nil
}

// MustRegister registers a topic and panics on error. Topics are defined at
// package level, so a failure here is a programming error.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.Register(topic); err != nil {
		panic(err)
	}
}

// Get looks up a topic by name.
func (m *Manager) Get(name string) (Topic, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[name]
	return entry.Topic, ok
}

// List returns every registered topic sorted by name.
func (m *Manager) List() []Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]Topic, 0, len(m.entries))
	for _, e := range m.entries {
		topics = append(topics, e.Topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name() < topics[j].Name() })
	return topics
}

// ListByModule returns the topics owned by module, sorted by name.
func (m *Manager) ListByModule(module string) []Topic {
	var out []Topic
	for _, t := range m.List() {
		if t.Module() == module {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of registered topics.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide manager.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}
