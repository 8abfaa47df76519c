// Package rtc describes the ICE servers that clients use for their own peer connections.
// The hub never opens a peer connection itself.
package rtc

import (
	"fmt"

	"github.com/dkeye/callhub/internal/config"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/samber/lo"
)

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}

// ICEServers converts the configured list, falling back to the default STUN server.
func ICEServers(cfg *config.Config) []webrtc.ICEServer {
	if len(cfg.ICEServers) == 0 {
		return DefaultICEServers()
	}
	return lo.Map(cfg.ICEServers, func(s config.ICEServer, _ int) webrtc.ICEServer {
		server := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		return server
	})
}

// Validate checks every URL is a stun:, stuns:, turn: or turns: URI.
func Validate(servers []webrtc.ICEServer) error {
	for _, s := range servers {
		for _, raw := range s.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				return fmt.Errorf("ice server %q: %w", raw, err)
			}
			if (uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS) && s.Username == "" {
				return fmt.Errorf("ice server %q: turn requires username", raw)
			}
		}
	}
	return nil
}
