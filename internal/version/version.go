package version

// Overridden at build time:
// go build -ldflags "-X github.com/Layr-Labs/abi-tool/internal/version.Version=v0.1.0 -X github.com/Layr-Labs/abi-tool/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version = "unreleased"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
