package config

import (
	"fmt"
	"os"
)

// Default configuration values (production)
const (
	DefaultDomain   = "hiresafe.onrender.com"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
	DefaultTURN     = "" // Optional, empty by default
	DefaultTURNUser = ""
	DefaultTURNPass = ""
)

// Config holds the client-side configuration.
type Config struct {
	// Domain is the backend server domain.
	Domain string

	// WebSocketURL and BridgeURL are constructed from the domain.
	WebSocketURL string
	BridgeURL    string

	// ICE servers for WebRTC.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay routes all media through TURN.
	ForceRelay bool

	// DisplayName shown to other room members; the server substitutes an
	// anonymized label when empty.
	DisplayName string
}

// Options carries CLI flag overrides into Load.
type Options struct {
	Domain      string
	STUNServer  string
	TURNServer  string
	TURNUser    string
	TURNPass    string
	ForceRelay  bool
	DisplayName string
	Insecure    bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := firstOf(opts.Domain, os.Getenv("HIRESAFE_DOMAIN"), DefaultDomain)
	stun := firstOf(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turn := firstOf(opts.TURNServer, os.Getenv("TURN_SERVER"), DefaultTURN)
	turnUser := firstOf(opts.TURNUser, os.Getenv("TURN_USERNAME"), DefaultTURNUser)
	turnPass := firstOf(opts.TURNPass, os.Getenv("TURN_PASSWORD"), DefaultTURNPass)

	wsScheme, httpScheme := "wss", "https"
	if opts.Insecure {
		wsScheme, httpScheme = "ws", "http"
	}

	cfg := &Config{
		Domain:       domain,
		WebSocketURL: fmt.Sprintf("%s://%s/ws", wsScheme, domain),
		BridgeURL:    fmt.Sprintf("%s://%s", httpScheme, domain),
		STUNServer:   stun,
		TURNServer:   turn,
		TURNUser:     turnUser,
		TURNPass:     turnPass,
		ForceRelay:   opts.ForceRelay,
		DisplayName:  opts.DisplayName,
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}
	return cfg, nil
}

// GetSTUNServers returns STUN server URLs as strings.
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured.
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password.
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

// ServerConfig holds the signaling server's configuration, read from the
// environment only.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string

	// MeetingTable names the DynamoDB table for code reservations. Empty
	// selects the in-memory store.
	MeetingTable string
}

// LoadServer reads the server configuration from the environment.
func LoadServer() *ServerConfig {
	return &ServerConfig{
		Addr:         firstOf(os.Getenv("ADDR"), ":8080"),
		MeetingTable: os.Getenv("MEETING_TABLE"),
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
