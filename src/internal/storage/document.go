package storage

import (
	"encoding/json"
	"strconv"

	"github.com/chuckhq/chuck-hq/src/internal/config"
)

// IDField is the key that identifies an item inside a collection.
const IDField = "id"

// Document is the parsed content of one data file.
type Document interface {
	Kind() config.ResourceKind
}

// Item is one element of a collection. Values are kept as decoded, numbers as
// json.Number, so unknown keys survive a read/write cycle unchanged.
type Item map[string]any

// Collection is an ordered list of items, in insertion order.
type Collection []Item

// Singleton is a document holding a single object.
type Singleton map[string]any

// List is a singleton document holding an array. It only exists when an
// array was written in place of the object.
type List []any

func (Collection) Kind() config.ResourceKind { return config.KindCollection }
func (Singleton) Kind() config.ResourceKind  { return config.KindSingleton }
func (List) Kind() config.ResourceKind       { return config.KindSingleton }

// SingletonOf wraps a decoded JSON object or array as a singleton document.
func SingletonOf(v any) (Document, bool) {
	switch d := v.(type) {
	case map[string]any:
		return Singleton(d), true
	case Singleton:
		return d, true
	case []any:
		return List(d), true
	case List:
		return d, true
	default:
		return nil, false
	}
}

// ItemOf turns a decoded JSON object or array into an item. Array elements
// are keyed by their index, so ["a", "b"] becomes {"0": "a", "1": "b"}.
// Any other value yields an empty item.
func ItemOf(v any) Item {
	switch d := v.(type) {
	case map[string]any:
		return Item(d)
	case Item:
		return d
	case []any:
		it := make(Item, len(d))
		for i, elem := range d {
			it[strconv.Itoa(i)] = elem
		}
		return it
	default:
		return Item{}
	}
}

// Empty returns the empty default document for kind.
func Empty(kind config.ResourceKind) Document {
	if kind == config.KindCollection {
		return Collection{}
	}
	return Singleton{}
}

// ID returns the item's id when it is a string.
func (it Item) ID() (string, bool) {
	id, ok := it[IDField].(string)
	return id, ok
}

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Merge returns a new item with every key of patch written over it. Keys
// missing from patch keep their current value; nested values are replaced,
// not merged.
func (it Item) Merge(patch Item) Item {
	out := it.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// IndexOf returns the position of the item whose id equals id, or -1.
func (c Collection) IndexOf(id string) int {
	for i, it := range c {
		if itemID, ok := it.ID(); ok && itemID == id {
			return i
		}
	}
	return -1
}

// Has reports whether an item with id exists.
func (c Collection) Has(id string) bool {
	return c.IndexOf(id) >= 0
}

// Without returns the items whose id differs from id, preserving order.
func (c Collection) Without(id string) Collection {
	out := make(Collection, 0, len(c))
	for _, it := range c {
		if itemID, ok := it.ID(); ok && itemID == id {
			continue
		}
		out = append(out, it)
	}
	return out
}

// IDString converts a body-supplied id into its stored form. Non-empty strings
// are used verbatim and numbers keep their literal text; anything else (empty
// string, zero, null, booleans, objects) yields "".
//
// Ids are always stored as strings: a body id of 17 is written back as "17",
// and true gets a generated id. Path ids are strings, so a stored number could
// never be updated or deleted.
func IDString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		if f, err := id.Float64(); err == nil && f == 0 {
			return ""
		}
		return id.String()
	default:
		return ""
	}
}
