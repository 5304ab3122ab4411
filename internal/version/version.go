package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/armature-io/armature/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/armature-io/armature/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/armature-io/armature/internal/version.Date={{.Date}}
)
