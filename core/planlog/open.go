package planlog

import "fmt"

// Options selects and configures a store.
type Options struct {
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the store named by o.Backend. A JSONL store rotates when
// MaxSizeMB is positive.
func Open(o Options) (Store, error) {
	switch o.Backend {
	case "", "jsonl":
		if o.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(o.Path, o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
		}
		return NewJSONLStore(o.Path)
	case "sqlite":
		return NewSQLiteStore(o.Path)
	default:
		return nil, fmt.Errorf("unknown plan log backend %s", o.Backend)
	}
}
