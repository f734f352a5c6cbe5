package state

import (
	"strings"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/schema"
)

// Read resolves a dotted path into the session document, e.g.
// "identity.member_id", "flow.data.amount" or "dashboard.balance".
// Unknown or missing paths yield a typed validation error, never a panic.
func Read(s *domain.Session, path string) (any, error) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 || segs[0] == "" {
		return nil, &schema.ValidationError{Key: path, Reason: "empty path"}
	}

	switch segs[0] {
	case "identity":
		return readIdentity(s.Identity, segs[1:], path)
	case "auth":
		if len(segs) == 2 && segs[1] == "token" {
			return s.Auth.Token, nil
		}
	case "dashboard":
		return readMap(s.Dashboard, segs[1:], path)
	case "flow":
		return readFlow(s.Flow, segs[1:], path)
	}
	return nil, &schema.ValidationError{Key: path, Reason: "no such path"}
}

func readIdentity(id domain.Identity, segs []string, full string) (any, error) {
	switch strings.Join(segs, ".") {
	case "member_id":
		return id.MemberID, nil
	case "channel.type":
		return id.Channel.Type, nil
	case "channel.identifier":
		return id.Channel.Identifier, nil
	}
	return nil, &schema.ValidationError{Key: full, Reason: "no such path"}
}

func readFlow(f domain.Flow, segs []string, full string) (any, error) {
	if len(segs) == 0 {
		return nil, &schema.ValidationError{Key: full, Reason: "no such path"}
	}
	switch segs[0] {
	case "path":
		return f.Path, nil
	case "component":
		return f.Component, nil
	case "awaiting_input":
		return f.AwaitingInput, nil
	case "component_result":
		return f.ComponentResult, nil
	case "data":
		return readMap(f.Data, segs[1:], full)
	}
	return nil, &schema.ValidationError{Key: full, Reason: "no such path"}
}

func readMap(region map[string]any, segs []string, full string) (any, error) {
	if len(segs) == 0 {
		return region, nil
	}
	var cur any = region
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &schema.ValidationError{Key: full, Reason: "no such path"}
		}
		cur, ok = m[seg]
		if !ok {
			return nil, &schema.ValidationError{Key: full, Reason: "no such path"}
		}
	}
	return cur, nil
}
