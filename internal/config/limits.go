package config

const (
	// MaxEventNameLength is the maximum length for event names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxEventNameLength = 255

	// MaxSchoolNameLength is the maximum length for school names.
	// Same as event names for consistency.
	MaxSchoolNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFilenameLength is the maximum length for asset filenames.
	// Same as folder names for consistency.
	MaxFilenameLength = 255

	// MaxFolderDepth is the deepest nesting level a folder may reach.
	// Root folders are depth 0, so a chain holds at most 11 folders.
	// Deeper trees make breadcrumbs unusable for parents browsing on
	// phones.
	MaxFolderDepth = 10

	// MaxFolderPathLength bounds materialized paths: MaxFolderDepth+1
	// segments of MaxFolderNameLength plus separators, rounded up.
	MaxFolderPathLength = 2880

	// MaxNavigationHistory is how many visited folders clients keep in
	// their navigation history. Served in hierarchy views so the
	// frontend bound cannot drift from the backend's.
	MaxNavigationHistory = 50

	// DefaultPageSize is the asset page size when the client sends none.
	DefaultPageSize = 50

	// MaxPageSize caps requested asset page sizes.
	MaxPageSize = 200

	// ShareTokenBytes is the entropy of a share token before hex
	// encoding. 32 bytes gives 256 bits, matching the checksum width.
	ShareTokenBytes = 32
)
