package handle

import "maps"

// Metadata keys every handle reports.
const (
	KeyURI         = "uri"
	KeySeekable    = "seekable"
	KeyMode        = "mode"
	KeyStreamType  = "stream_type"
	KeyWrapperType = "wrapper_type"
)

// Metadata is the key/value description of a handle.
type Metadata map[string]any

// Lookup returns the value stored under key and whether it exists.
func (m Metadata) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Metadata) clone() Metadata {
	return maps.Clone(m)
}
