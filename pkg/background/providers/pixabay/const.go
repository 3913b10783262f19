package pixabay

const (
	// MaxPerPage is the largest result count the Pixabay API serves per call.
	MaxPerPage = 200

	// AssumedCeiling is the documented per-hour request quota.
	AssumedCeiling = 100
)
