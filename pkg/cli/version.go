package cli

// Version is the running build, set with
// -ldflags "-X github.com/Fepozopo/colorfill/pkg/cli.Version=1.2.3".
var Version = "0.0.0-dev"
