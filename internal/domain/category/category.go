package category

import "fmt"

// Category is one of the document kinds partitioned within the shared
// search index. Key is the stable external identifier used in request
// parameters and response keys; IndexValue is the discriminator stored
// in the engine's type field.
type Category struct {
	key      string
	indexVal string
}

// The closed set of categories.
var (
	Message = Category{key: "message", indexVal: "message"}
	Room    = Category{key: "room", indexVal: "room"}
	User    = Category{key: "user", indexVal: "user"}
	File    = Category{key: "file", indexVal: "file"}
)

var all = []Category{Message, Room, User, File}

// All returns every category in stable order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Parse resolves an external key to its category.
func Parse(key string) (Category, error) {
	for _, c := range all {
		if c.key == key {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("unknown category %q", key)
}

// Key returns the external identifier.
func (c Category) Key() string { return c.key }

// IndexValue returns the engine type-field discriminator.
func (c Category) IndexValue() string { return c.indexVal }

func (c Category) String() string { return c.key }

// IsZero reports whether the category is the zero value.
func (c Category) IsZero() bool { return c.key == "" }
