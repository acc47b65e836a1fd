package differ

// defaultSnapshotLimit bounds the length of value snapshots in change records.
const defaultSnapshotLimit = 80

// Option configures a Differ.
type Option func(*differ)

// WithSnapshotLimit sets the maximum length of value snapshots recorded in
// changes. Zero disables truncation.
func WithSnapshotLimit(limit int) Option {
	return func(d *differ) {
		d.snapshotLimit = limit
	}
}
