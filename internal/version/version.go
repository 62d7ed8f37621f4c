package version

// Version is the current version of the HireSafe CLI.
// This value can be overridden at build time using:
//   go build -ldflags="-X 'github.com/Shreyanshu20/HireSafe-sub000/internal/version.Version=v1.0.0'"
var Version = "dev"
