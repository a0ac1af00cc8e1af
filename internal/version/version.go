package version

// Version is set at build time via ldflags
var Version = "dev"

// GetVersion returns the version the binary was built as
func GetVersion() string {
	return Version
}
