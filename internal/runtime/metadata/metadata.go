// Package metadata models the key/value envelope that travels alongside a
// payload on every transport. Correlation state is carried exclusively in
// this envelope so payload bodies stay independently parseable.
package metadata

// Metadata is the header map attached to an outbound call or published
// message.
type Metadata map[string]string

// Lookup returns the value for key and whether it was present.
func (m Metadata) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Get returns the value for key, or the empty string.
func (m Metadata) Get(key string) string {
	return m[key]
}

// Clone returns a shallow copy so callers can stamp outbound headers
// without touching the inbound map.
func (m Metadata) Clone() Metadata {
	return m.grow(0)
}

// With returns a clone containing the extra key/value pair.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.grow(1)
	cloned[key] = value
	return cloned
}

// WithAll returns a clone merged with all supplied entries.
func (m Metadata) WithAll(entries Metadata) Metadata {
	cloned := m.grow(len(entries))
	for k, v := range entries {
		cloned[k] = v
	}
	return cloned
}

func (m Metadata) grow(extra int) Metadata {
	cloned := make(Metadata, len(m)+extra)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}
