package config

import (
	"os"
	"strings"
	"sync"
)

// DefaultDockerHostAlias reaches the host machine from inside a container.
const DefaultDockerHostAlias = "host.docker.internal"

var (
	dockerOnce  sync.Once
	inDocker    bool
	dockerAlias string
)

func detectDocker() {
	dockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inDocker = err == nil
		dockerAlias = strings.TrimSpace(os.Getenv("DOCKER_HOST_ALIAS"))
		if dockerAlias == "" {
			dockerAlias = DefaultDockerHostAlias
		}
	})
}

// IsRunningInDocker reports whether /.dockerenv exists. Cached after the first call.
func IsRunningInDocker() bool {
	detectDocker()
	return inDocker
}

// ResolveHostForDocker rewrites loopback hosts of user databases to the Docker
// host alias (DOCKER_HOST_ALIAS, default host.docker.internal) when the engine
// runs in a container, so "localhost" keeps meaning the user's machine.
func ResolveHostForDocker(host string) string {
	detectDocker()
	return rewriteLoopback(host, inDocker, dockerAlias)
}

func rewriteLoopback(host string, inContainer bool, alias string) string {
	if !inContainer {
		return host
	}
	switch strings.ToLower(strings.Trim(host, "[]")) {
	case "localhost", "127.0.0.1", "::1":
		return alias
	}
	return host
}
