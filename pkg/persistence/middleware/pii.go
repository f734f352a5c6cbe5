package middleware

import (
	"context"
	"regexp"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware returns a middleware that masks the values of dashboard
// and flow.data keys matching the patterns before they reach the store.
// Masking is one-way: reads return the document as persisted.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, s *domain.Session) error {
	// Deep-clone the map regions so masking never reaches back into the
	// document the engine is still working with.
	masked := *s
	masked.Dashboard = deepCopyMap(s.Dashboard)
	masked.Flow.Data = deepCopyMap(s.Flow.Data)

	maskMap(masked.Dashboard, m.patterns)
	maskMap(masked.Flow.Data, m.patterns)

	return m.next.Save(ctx, key, &masked)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) (*domain.Session, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Touch(ctx context.Context, key string) error {
	return m.next.Touch(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}
