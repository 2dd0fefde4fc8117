package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/wpstrap/wpstrap/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/wpstrap/wpstrap/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/wpstrap/wpstrap/internal/version.Date={{.Date}}
)
