package forms

import "sync"

// SchemaCache memoizes compiled schemas per tournament. The cache key includes
// a hash of the field list, so saving a new form for a tournament naturally
// evicts the stale validator on the next lookup.
type SchemaCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	hash   string
	schema *Schema
}

func NewSchemaCache() *SchemaCache {
	return &SchemaCache{entries: make(map[string]*cacheEntry)}
}

// Get returns the compiled schema for a tournament's current field list,
// compiling and storing it if the list changed since the last call.
func (c *SchemaCache) Get(tournamentID string, fields []FieldDefinition) *Schema {
	hash := HashFieldList(fields)

	c.mu.RLock()
	entry, ok := c.entries[tournamentID]
	c.mu.RUnlock()
	if ok && entry.hash == hash {
		return entry.schema
	}

	schema := Compile(fields)
	c.mu.Lock()
	c.entries[tournamentID] = &cacheEntry{hash: hash, schema: schema}
	c.mu.Unlock()
	return schema
}

// Invalidate drops a tournament's cached schema, e.g. after the tournament
// itself is deleted.
func (c *SchemaCache) Invalidate(tournamentID string) {
	c.mu.Lock()
	delete(c.entries, tournamentID)
	c.mu.Unlock()
}
