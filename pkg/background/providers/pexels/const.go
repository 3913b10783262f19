package pexels

const (
	// MaxPerPage is the largest per_page value the Pexels search API accepts.
	MaxPerPage = 80

	// AssumedCeiling is the free-tier hourly request quota.
	AssumedCeiling = 200
)
