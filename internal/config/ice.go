package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServers resolves the client-facing ICE configuration. An explicit
// JSON list wins over the convenience STUN URL string. The relay never
// dials these itself; they are handed to clients in the welcome event.
func (c *Config) ICEServers() ([]webrtc.ICEServer, error) {
	if raw := strings.TrimSpace(c.ICEServersJSON); raw != "" {
		return ParseICEServersJSON(raw)
	}

	urls := splitURLList(c.StunURLs)
	if len(urls) == 0 {
		return nil, nil
	}
	server := webrtc.ICEServer{URLs: urls}
	if err := validateICEServer(server); err != nil {
		return nil, err
	}
	return []webrtc.ICEServer{server}, nil
}

type iceServerJSON struct {
	URLs       stringOrStringSlice `json:"urls"`
	Username   string              `json:"username,omitempty"`
	Credential string              `json:"credential,omitempty"`
}

type stringOrStringSlice []string

func (s *stringOrStringSlice) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// ParseICEServersJSON parses and validates an ice_servers_json value.
func ParseICEServersJSON(raw string) ([]webrtc.ICEServer, error) {
	var servers []iceServerJSON
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, err
	}

	out := make([]webrtc.ICEServer, 0, len(servers))
	for i, server := range servers {
		urls := make([]string, 0, len(server.URLs))
		for _, url := range server.URLs {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			urls = append(urls, url)
		}

		pcServer := webrtc.ICEServer{
			URLs:     urls,
			Username: strings.TrimSpace(server.Username),
		}
		if strings.TrimSpace(server.Credential) != "" {
			pcServer.Credential = server.Credential
		}

		if err := validateICEServer(pcServer); err != nil {
			return nil, fmt.Errorf("iceServers[%d]: %w", i, err)
		}
		out = append(out, pcServer)
	}
	return out, nil
}

func validateICEServer(s webrtc.ICEServer) error {
	if len(s.URLs) == 0 {
		return errors.New("ice server has no urls")
	}
	turn := false
	for _, url := range s.URLs {
		lower := strings.ToLower(url)
		switch {
		case strings.HasPrefix(lower, "stun:"), strings.HasPrefix(lower, "stuns:"):
		case strings.HasPrefix(lower, "turn:"), strings.HasPrefix(lower, "turns:"):
			turn = true
		default:
			return fmt.Errorf("unsupported ice url %q", url)
		}
	}
	if turn && (s.Username == "" || s.Credential == nil) {
		return errors.New("turn urls require username and credential")
	}
	return nil
}

func splitURLList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
