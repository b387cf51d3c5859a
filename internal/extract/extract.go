// Package extract turns raw pane text into port candidates.
//
// This is deliberate heuristic matching — the input is free-form output from
// heterogeneous dev servers, so the rules are permissive and overlapping.
// Precision is sacrificed for recall; the reachability probe downstream is
// the real gate against false positives.
package extract

import (
	"regexp"
	"strconv"

	"github.com/timvw/port-patrol/internal/model"
)

// rule pairs a pattern with the protocol to assume when the pattern
// captures only a port. Rules with two capture groups may capture them in
// either order; resolution is by checking whether the first group is
// numeric (if so it is the port).
type rule struct {
	re    *regexp.Regexp
	proto string
}

// rules is the ordered registry of dev-server URL patterns. Rules are
// independent and non-exclusive: one text blob may match several of them.
var rules = []rule{
	// Vite, Vue, and React development servers
	{regexp.MustCompile(`Local:\s+(https?)://localhost:(\d+)`), ""},
	{regexp.MustCompile(`-\s+Local:\s+(https?)://localhost:(\d+)`), ""},
	{regexp.MustCompile(`➜\s+Local:\s+(https?)://localhost:(\d+)`), ""},
	{regexp.MustCompile(`running at:\s+(https?)://localhost:(\d+)`), ""},

	// Next.js
	{regexp.MustCompile(`ready on (https?)://localhost:(\d+)`), ""},
	{regexp.MustCompile(`started server on .*:(https?)://.*:(\d+)`), ""},
	{regexp.MustCompile(`ready on .*:(\d+)`), "http"},
	{regexp.MustCompile(`started server on .*:(\d+)`), "http"},

	// Create React App
	{regexp.MustCompile(`On Your Network:\s+(https?)://.*:(\d+)`), ""},
	{regexp.MustCompile(`Compiled successfully!.*(https?)://localhost:(\d+)`), ""},

	// WebSocket servers
	{regexp.MustCompile(`WebSocket server listening on port (\d+)`), "ws"},
	{regexp.MustCompile(`WS server on port (\d+)`), "ws"},
	{regexp.MustCompile(`WSS server on port (\d+)`), "wss"},

	// Generic servers
	{regexp.MustCompile(`Server listening on port (\d+)`), "http"},
	{regexp.MustCompile(`Listening on port (\d+)`), "http"},
	{regexp.MustCompile(`Server running on port (\d+)`), "http"},
	{regexp.MustCompile(`(https?)://(?:localhost|127\.0\.0\.1):(\d+)`), ""},

	// Python frameworks
	{regexp.MustCompile(`Django version .* using .* on (https?)://.*:(\d+)`), ""},
	{regexp.MustCompile(`Flask .* on (https?)://.*:(\d+)`), ""},
	{regexp.MustCompile(`Uvicorn running on (https?)://.*:(\d+)`), ""},
}

// beaconRe matches the broker's one-shot ready beacon. A pane that prints
// this is the broker and must never be scanned for dev-server URLs.
var beaconRe = regexp.MustCompile(`BROKER_READY:(\d+)`)

// Result is the outcome of scanning one pane's text.
type Result struct {
	// Candidates are the extracted (port, protocol) pairs, deduplicated
	// by port. Empty when Broker is true.
	Candidates []model.Candidate
	// Broker is true when the beacon was found. BrokerPort is only
	// meaningful in that case.
	Broker     bool
	BrokerPort int
}

// Extract scans text for the broker beacon and dev-server URL patterns.
//
// The beacon check short-circuits: when present, no URL rules run at all,
// even if the same text would match them. Otherwise every rule runs against
// the full text; candidates are deduplicated by port with the protocol from
// the last matching rule (a deterministic tie-break — rules rarely disagree
// on the same port in practice).
func Extract(text string) Result {
	if m := beaconRe.FindStringSubmatch(text); m != nil {
		port, err := strconv.Atoi(m[1])
		if err == nil {
			return Result{Broker: true, BrokerPort: port}
		}
	}

	var candidates []model.Candidate
	index := map[int]int{} // port -> position in candidates

	for _, r := range rules {
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			port, protocol, ok := interpret(m[1:], r.proto)
			if !ok || !model.ValidPort(port) {
				continue
			}
			c := model.Candidate{Port: port, Protocol: protocol, Path: "/"}
			if i, seen := index[port]; seen {
				// Last match wins; first-sighting order is kept.
				candidates[i] = c
				continue
			}
			index[port] = len(candidates)
			candidates = append(candidates, c)
		}
	}

	return Result{Candidates: candidates}
}

// interpret resolves a rule's capture groups into (port, protocol).
// Two groups may arrive as (protocol, port) or (port, junk) depending on
// the rule; a numeric first group means it is the port and the rule's
// default protocol applies.
func interpret(groups []string, defaultProto string) (int, string, bool) {
	fallback := defaultProto
	if fallback == "" {
		fallback = "http"
	}

	switch len(groups) {
	case 1:
		port, err := strconv.Atoi(groups[0])
		if err != nil {
			return 0, "", false
		}
		return port, fallback, true
	case 2:
		if port, err := strconv.Atoi(groups[0]); err == nil {
			return port, fallback, true
		}
		port, err := strconv.Atoi(groups[1])
		if err != nil {
			return 0, "", false
		}
		return port, groups[0], true
	default:
		return 0, "", false
	}
}
