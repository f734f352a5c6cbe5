package schema

import (
	"fmt"

	"github.com/konvo/konvo/pkg/domain"
)

// reservedKeys are the identity and credential field names that may exist
// only at their canonical top-level location. A write that would place one of
// them anywhere else in the document duplicates state and is rejected.
var reservedKeys = map[string]struct{}{
	"member_id": {},
	"token":     {},
	"identity":  {},
	"auth":      {},
	"channel":   {},
}

// Reserved reports whether key names an identity or credential field.
func Reserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// ValidateSession checks the structural rules of a session document:
//
//   - identity/credential keys appear nowhere outside their canonical
//     location (dashboard and any nested maps are scanned; flow.data is
//     exempt: it is the unvalidated scratch region);
//   - when a flow is present, path and component are non-empty strings.
//
// It never fixes up or coerces: fixing is the caller's job.
func ValidateSession(s *domain.Session) error {
	if s == nil {
		return &ValidationError{Key: "session", Reason: "must not be nil"}
	}

	var errs []error

	errs = append(errs, scanReserved("dashboard", s.Dashboard)...)

	if f := s.Flow; f.Path != "" || f.Component != "" || f.AwaitingInput || f.ComponentResult != "" {
		if f.Path == "" {
			errs = append(errs, &ValidationError{Key: "flow.path", Reason: "required"})
		}
		if f.Component == "" {
			errs = append(errs, &ValidationError{Key: "flow.component", Reason: "required"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// scanReserved walks a map region looking for reserved keys at any depth.
func scanReserved(prefix string, region map[string]any) []error {
	var errs []error
	for k, v := range region {
		path := fmt.Sprintf("%s.%s", prefix, k)
		if Reserved(k) {
			errs = append(errs, &ValidationError{
				Key:    path,
				Reason: "identity/credential fields live only at the top level",
				Value:  v,
			})
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			errs = append(errs, scanReserved(path, nested)...)
		}
	}
	return errs
}
