package app

// Build information populated via -ldflags at build time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString is printed by -version.
func VersionString() string {
	return "notifyarchive " + BuildVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
