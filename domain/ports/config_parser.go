package ports

// ConfigParser decodes a configuration document into v.
type ConfigParser interface {
	Parse(data []byte, v any) error
}
