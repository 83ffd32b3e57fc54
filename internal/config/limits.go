package config

import "time"

const (
	// MaxGameSystemNameLength is the maximum length for game system names.
	// Limited to 255 to keep names short and descriptive.
	MaxGameSystemNameLength = 255

	// MaxWorldNameLength is the maximum length for world names.
	// Same as game system names for consistency.
	MaxWorldNameLength = 255

	// MaxDisplayNameLength is the maximum length for document display names.
	MaxDisplayNameLength = 255

	// MaxUploadSize caps document uploads at 25MB. Rulebook PDFs run large;
	// anything above this belongs in external storage.
	MaxUploadSize = 25 << 20

	// DefaultLockTTL is the lease duration applied when an acquire or renew
	// does not request one.
	DefaultLockTTL = 30 * time.Minute

	// LockSweepInterval is how often the background sweep reclaims expired
	// leases. Lazy purge on access keeps lock state correct regardless.
	LockSweepInterval = 5 * time.Minute
)
