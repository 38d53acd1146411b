package delivery

import (
	"net/url"

	"github.com/openfed-online/federation-sdk-go/pkg/shared"
)

// Recipient is one delivery target: an identity URL, a personal inbox,
// and optionally a shared per-server inbox.
type Recipient struct {
	ID          *url.URL
	Inbox       *url.URL
	SharedInbox *url.URL
}

// InboxTargets computes the destination inboxes for the given
// recipients. Each recipient contributes its shared inbox when
// preferSharedInbox is set and one is available, its personal inbox
// otherwise, and nothing at all when it lacks an identity or an inbox.
// An inbox whose origin matches the origin of any exclusion URL is
// skipped.
//
// The returned map is keyed by the exact inbox URL string and holds
// the set of recipient identity URLs behind each inbox. Exclusion
// compares origins only while map keys compare exact URLs: two inboxes
// on the same origin but different paths stay separate entries. That
// asymmetry is an explicit, tested contract.
//
// InboxTargets is pure: it performs no network I/O.
func InboxTargets(
	recipients []Recipient,
	preferSharedInbox bool,
	exclude []*url.URL,
) map[string]map[string]struct{} {
	targets := make(map[string]map[string]struct{})

	for _, recipient := range recipients {
		if recipient.ID == nil {
			continue
		}

		inbox := recipient.Inbox
		if preferSharedInbox && recipient.SharedInbox != nil {
			inbox = recipient.SharedInbox
		}
		if inbox == nil {
			continue
		}

		if originExcluded(inbox, exclude) {
			continue
		}

		key := inbox.String()
		if _, exists := targets[key]; !exists {
			targets[key] = make(map[string]struct{})
		}
		targets[key][recipient.ID.String()] = struct{}{}
	}

	return targets
}

func originExcluded(inbox *url.URL, exclude []*url.URL) bool {
	for _, excluded := range exclude {
		if shared.SameOrigin(inbox, excluded) {
			return true
		}
	}
	return false
}
