package app

const ServiceName = "developer-back"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'github.com/kosta-developer/DEVELOPER-Back/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
