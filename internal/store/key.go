package store

const keySeparator = "/"

// Key is a discriminated storage key: a variant tag plus an optional entity id.
type Key struct {
	Tag string
	ID  string
}

// Tagged builds a key for a singleton slot such as Admin or Counter.
func Tagged(tag string) Key {
	return Key{Tag: tag}
}

// Keyed builds a key for a per-entity record.
func Keyed(tag, id string) Key {
	return Key{Tag: tag, ID: id}
}

// String encodes the key as "Tag" or "Tag/ID".
func (k Key) String() string {
	if k.ID == "" {
		return k.Tag
	}
	return k.Tag + keySeparator + k.ID
}
