package unsplash

const (
	// MaxPerPage is the largest batch the Unsplash search endpoint serves.
	MaxPerPage = 30

	// AssumedCeiling is the demo-tier hourly request quota.
	AssumedCeiling = 50
)
