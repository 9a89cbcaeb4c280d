package session

import "github.com/matheus3301/classnotes/internal/config"

const DefaultSessionName = "main"

// Resolve determines the active session name using precedence:
// 1. flagOverride (--session flag)
// 2. config.toml default_session (or CLASSNOTES_SESSION)
// 3. "main"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	cfg, err := config.LoadOrDefault(ConfigPath())
	if err == nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}

// DaemonTarget returns the gRPC target for the session's daemon: the
// configured daemon_addr when set, otherwise the session socket.
func DaemonTarget(cfg *config.Config, name string) string {
	if cfg != nil && cfg.DaemonAddr != "" {
		return cfg.DaemonAddr
	}
	return "unix://" + SocketPath(name)
}
