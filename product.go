package tracker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductKey uniquely identifies a tradeable item by its
// (category, group, product) triple. All three parts are normalized strings;
// the identity of an item never changes.
type ProductKey struct {
	Category string `json:"categoryId"`
	Group    string `json:"group_id"`
	Product  string `json:"product_id"`
}

// NewProductKey builds a normalized ProductKey from raw identifiers.
func NewProductKey(category, group, product string) ProductKey {
	return ProductKey{
		Category: normalizeID(category),
		Group:    normalizeID(group),
		Product:  normalizeID(product),
	}
}

// normalizeID canonicalizes an identifier. Numeric-looking values are parsed
// and truncated to their integer part, so "3.0", "3" and " 3 " all become
// "3". This absorbs the mixed numeric/string encodings seen in older ledgers.
func normalizeID(v string) string {
	raw := strings.TrimSpace(v)
	if d, err := decimal.NewFromString(raw); err == nil {
		return d.Truncate(0).String()
	}
	return raw
}

// String renders the key as "category/group/product", the form used by the
// gap report and the price file layout.
func (k ProductKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Category, k.Group, k.Product)
}

// ParseProductKey parses a "category/group/product" string back into a key.
func ParseProductKey(s string) (ProductKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ProductKey{}, fmt.Errorf("invalid product key %q: want category/group/product", s)
	}
	return NewProductKey(parts[0], parts[1], parts[2]), nil
}

// Compare orders keys lexicographically by category, then group, then product.
func (k ProductKey) Compare(o ProductKey) int {
	if c := strings.Compare(k.Category, o.Category); c != 0 {
		return c
	}
	if c := strings.Compare(k.Group, o.Group); c != 0 {
		return c
	}
	return strings.Compare(k.Product, o.Product)
}

// Item is a quantity of a specific product within a transaction.
type Item struct {
	Key      ProductKey
	Quantity Quantity
}

// MarshalJSON flattens the key fields alongside the quantity.
func (i Item) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("categoryId", i.Key.Category)
	w.Append("group_id", i.Key.Group)
	w.Append("product_id", i.Key.Product)
	w.Append("quantity", i.Quantity)
	return w.MarshalJSON()
}

// UnmarshalJSON reads the flattened item form and normalizes the key.
func (i *Item) UnmarshalJSON(data []byte) error {
	var temp struct {
		Category string   `json:"categoryId"`
		Group    string   `json:"group_id"`
		Product  string   `json:"product_id"`
		Quantity Quantity `json:"quantity"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	i.Key = NewProductKey(temp.Category, temp.Group, temp.Product)
	i.Quantity = temp.Quantity
	return nil
}
