// Package reconcile decides whether an import-ready record is created,
// updated, or rejected against the catalog. The engine performs a single
// lookup and returns a command for the caller to execute; it writes
// nothing itself, so the decision is deterministic and unit-testable.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/openstudydata/ddiwalk/record"
	"github.com/openstudydata/ddiwalk/registry"
)

// ErrReconciliation indicates a catalog lookup failed for a reason other
// than not-found. It aborts the import; retry belongs to the caller.
var ErrReconciliation = errors.New("catalog lookup failed")

// maxSuffixProbes bounds identifier disambiguation.
const maxSuffixProbes = 100

// Action is the decision the engine reached.
type Action int

const (
	// ActionCreate inserts a new record.
	ActionCreate Action = iota
	// ActionUpdate replaces an existing record with the merged one.
	ActionUpdate
	// ActionReject keeps the catalog untouched.
	ActionReject
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionReject:
		return "reject"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Policy controls how an identifier collision is resolved.
//
// Neither flag set: collisions are rejected as duplicates.
// OverrideExisting: the new record is merged over the existing one and
// updated (OverrideExisting wins when both flags are set).
// AllowDuplicates alone: a distinct record is created under a suffixed
// identifier (slug-2, slug-3, ...) instead of colliding.
type Policy struct {
	AllowDuplicates  bool
	OverrideExisting bool
}

// Outcome is the command returned to the caller. Record is nil for
// ActionReject.
type Outcome struct {
	Action Action
	Record *record.Record
	Reason string
}

// Engine reconciles one record per call against the catalog. It holds no
// cross-call state. The lookup and the caller's subsequent write are not
// atomic; serializing concurrent imports of one identifier is the
// caller's responsibility.
type Engine struct {
	Registry registry.Registry
	Policy   Policy
}

// Reconcile looks up the record's identifier and decides the outcome.
func (e *Engine) Reconcile(ctx context.Context, rec *record.Record) (*Outcome, error) {
	existing, err := e.Registry.Show(ctx, rec.Name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return &Outcome{Action: ActionCreate, Record: stripForCreate(rec)}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}

	switch {
	case e.Policy.OverrideExisting:
		return &Outcome{Action: ActionUpdate, Record: merge(rec, existing)}, nil
	case e.Policy.AllowDuplicates:
		return e.disambiguate(ctx, rec)
	default:
		return &Outcome{Action: ActionReject, Reason: "duplicate"}, nil
	}
}

// disambiguate probes suffixed identifiers until one is free and returns a
// create command for it.
func (e *Engine) disambiguate(ctx context.Context, rec *record.Record) (*Outcome, error) {
	for i := 2; i < 2+maxSuffixProbes; i++ {
		candidate := fmt.Sprintf("%s-%d", rec.Name, i)
		_, err := e.Registry.Show(ctx, candidate)
		if errors.Is(err, registry.ErrNotFound) {
			out := stripForCreate(rec)
			out.Name = candidate
			return &Outcome{Action: ActionCreate, Record: out}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
		}
	}
	return nil, fmt.Errorf("%w: no free identifier for %q after %d probes",
		ErrReconciliation, rec.Name, maxSuffixProbes)
}

// stripForCreate drops fields the create operation must not carry.
func stripForCreate(rec *record.Record) *record.Record {
	out := rec.Clone()
	out.ID = ""
	return out
}

// merge overlays the new record on the existing one: new non-empty fields
// replace old ones, fields absent from the new record are preserved. The
// catalog's own identifier always survives the merge.
func merge(newRec, existing *record.Record) *record.Record {
	out := existing.Clone()
	out.Title = overlay(newRec.Title, out.Title)
	out.URL = overlay(newRec.URL, out.URL)
	out.Author = overlay(newRec.Author, out.Author)
	out.AuthorEmail = overlay(newRec.AuthorEmail, out.AuthorEmail)
	out.Maintainer = overlay(newRec.Maintainer, out.Maintainer)
	out.MaintainerEmail = overlay(newRec.MaintainerEmail, out.MaintainerEmail)
	out.LicenseID = overlay(newRec.LicenseID, out.LicenseID)
	out.Version = overlay(newRec.Version, out.Version)
	out.Notes = overlay(newRec.Notes, out.Notes)
	if len(newRec.Tags) > 0 {
		out.Tags = append([]record.Tag(nil), newRec.Tags...)
	}
	if len(newRec.Resources) > 0 {
		out.Resources = append([]record.Resource(nil), newRec.Resources...)
	}
	if len(newRec.Extras) > 0 {
		if out.Extras == nil {
			out.Extras = make(map[string]string, len(newRec.Extras))
		}
		for k, v := range newRec.Extras {
			if v != "" {
				out.Extras[k] = v
			}
		}
	}
	return out
}

func overlay(newVal, oldVal string) string {
	if newVal != "" {
		return newVal
	}
	return oldVal
}
