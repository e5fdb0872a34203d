package config

// ConfigBackend persists the dotted keys listed in keys.go.
//
// Location is a human-readable description of where values live, printed by
// `dietfit config show` so users know what to edit by hand.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
	Location() string
}
