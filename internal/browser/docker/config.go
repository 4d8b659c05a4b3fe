package docker

import (
	"time"
)

// Config holds the configuration for the containerised browser.
type Config struct {
	// Image is the Docker image to run. It must start Chrome with remote
	// debugging enabled.
	Image string
	// Port is the DevTools port exposed on the host network.
	Port int
	// MemoryLimit is the maximum amount of memory the container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs the container can use.
	CPULimit float64
	// PullTimeout bounds the image pull.
	PullTimeout time.Duration
	// ReadyInterval and ReadyAttempts bound the wait for the DevTools endpoint.
	ReadyInterval time.Duration
	ReadyAttempts int
}

// DefaultConfig runs the chromedp headless-shell image.
func DefaultConfig() Config {
	return Config{
		Image: "chromedp/headless-shell:latest",
		Port:  9222,
		// 1 GB memory limit
		MemoryLimit:   1024 * 1024 * 1024,
		CPULimit:      1,
		PullTimeout:   2 * time.Minute,
		ReadyInterval: 500 * time.Millisecond,
		ReadyAttempts: 60,
	}
}
