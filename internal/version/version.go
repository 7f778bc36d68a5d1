package version

// Set via -ldflags "-X detectdemo/internal/version.VERSION=... -X detectdemo/internal/version.COMMIT=..."
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
