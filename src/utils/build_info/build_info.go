package build_info

// Set with -ldflags "-X github.com/warp-contracts/token-syncer/src/utils/build_info.Version=..."
var Version = "dev"
