// Package docker runs a headless Chrome in a container for hosts without a
// local browser.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/sakif/leetpush/internal/browser"
	"github.com/sakif/leetpush/internal/poll"
)

var _ browser.Launcher = (*Launcher)(nil)

// Launcher implements browser.Launcher with one Docker container.
type Launcher struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	http   *http.Client

	mu          sync.Mutex
	containerID string
}

// New creates a Docker client and makes sure the image is available.
func New(cfg Config, logger *slog.Logger) (*Launcher, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker: creating client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PullTimeout)
	defer cancel()

	logger.Info("ensuring browser image is available", slog.String("image", cfg.Image))
	reader, err := cli.ImagePull(ctx, cfg.Image, image.PullOptions{})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker: pulling image: %w", err)
	}
	defer reader.Close()
	// Read everything to block until the pull is complete
	_, _ = io.Copy(io.Discard, reader)
	logger.Info("browser image is ready")

	return &Launcher{
		cli:    cli,
		config: cfg,
		logger: logger,
		http:   &http.Client{Timeout: 2 * time.Second},
	}, nil
}

// Start creates and starts the container, then waits for DevTools to answer.
func (l *Launcher) Start(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.containerID == "" {
		id, err := l.createContainer(ctx)
		if err != nil {
			return "", err
		}
		l.containerID = id
		l.logger.Info("browser container started", slog.String("id", shortID(id)))
	}

	versionURL := fmt.Sprintf("http://127.0.0.1:%d/json/version", l.config.Port)
	wsURL, attempts, err := poll.Until(ctx, l.config.ReadyInterval, l.config.ReadyAttempts,
		func(ctx context.Context, _ int) (string, bool, error) {
			ws, err := l.debuggerURL(ctx, versionURL)
			if err != nil {
				// Not listening yet.
				return "", false, nil
			}
			return ws, true, nil
		})
	if err != nil {
		return "", fmt.Errorf("docker: waiting for devtools after %d checks: %w", attempts, err)
	}

	l.logger.Info("browser devtools ready", slog.Int("checks", attempts))
	return wsURL, nil
}

// Close removes the container and closes the docker client.
func (l *Launcher) Close() error {
	l.mu.Lock()
	id := l.containerID
	l.containerID = ""
	l.mu.Unlock()

	if id != "" {
		l.removeContainer(id)
	}
	return l.cli.Close()
}

func (l *Launcher) createContainer(ctx context.Context) (string, error) {
	hostConfig := &container.HostConfig{
		// DevTools must be reachable on 127.0.0.1 and the browser needs
		// outbound access to the practice site.
		NetworkMode: "host",
		Resources: container.Resources{
			Memory:   l.config.MemoryLimit,
			NanoCPUs: int64(l.config.CPULimit * 1e9),
		},
		ShmSize: 256 * 1024 * 1024,
	}

	resp, err := l.cli.ContainerCreate(ctx, &container.Config{
		Image: l.config.Image,
		Cmd:   []string{"--remote-debugging-port=" + strconv.Itoa(l.config.Port)},
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("docker: creating container: %w", err)
	}

	if err := l.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		l.removeContainer(resp.ID)
		return "", fmt.Errorf("docker: starting container: %w", err)
	}

	return resp.ID, nil
}

func (l *Launcher) removeContainer(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := l.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
	if err != nil {
		l.logger.Error("failed to remove browser container", slog.String("id", shortID(id)), slog.String("error", err.Error()))
	}
}

func (l *Launcher) debuggerURL(ctx context.Context, versionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("no debugger url")
	}
	return version.WebSocketDebuggerURL, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
