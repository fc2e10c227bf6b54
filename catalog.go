package tracker

import (
	"fmt"
	"os"
	"sort"
)

// ProductInfo is display metadata for a product. It is cosmetic: valuation
// never depends on it, and a missing entry only degrades labels.
type ProductInfo struct {
	Name      string `json:"name,omitempty"`
	GroupName string `json:"group_name,omitempty"`
	Sealed    bool   `json:"sealed,omitempty"`
}

// Catalog maps product keys to their display metadata.
type Catalog map[ProductKey]ProductInfo

// Ensure records a product in the catalog if absent, so every product ever
// transacted has at least an empty entry to hang metadata on.
func (c Catalog) Ensure(key ProductKey) {
	if _, exists := c[key]; !exists {
		c[key] = ProductInfo{}
	}
}

// Name returns the display name for a key, falling back to the key itself.
func (c Catalog) Name(key ProductKey) string {
	if info, exists := c[key]; exists && info.Name != "" {
		return info.Name
	}
	return key.String()
}

// Keys returns every catalogued product in sorted order.
func (c Catalog) Keys() []ProductKey {
	keys := make([]ProductKey, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

// DecodeCatalog reads the catalog file. A missing file yields an empty
// catalog.
func DecodeCatalog(path string) (Catalog, error) {
	var raw map[string]ProductInfo
	if err := readJSONFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return make(Catalog), nil
		}
		return nil, fmt.Errorf("could not load catalog: %w", err)
	}
	c := make(Catalog, len(raw))
	for k, info := range raw {
		key, err := ParseProductKey(k)
		if err != nil {
			return nil, fmt.Errorf("bad catalog entry: %w", err)
		}
		c[key] = info
	}
	return c, nil
}

// EncodeCatalog writes the catalog atomically, keys sorted.
func EncodeCatalog(path string, c Catalog) error {
	raw := make(map[string]ProductInfo, len(c))
	for k, info := range c {
		raw[k.String()] = info
	}
	if err := writeJSONFile(path, raw); err != nil {
		return fmt.Errorf("could not save catalog: %w", err)
	}
	return nil
}
