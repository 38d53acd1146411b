package delivery

import (
	"net/url"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return parsed
}

func TestInboxTargetsSharedPersonalInbox(t *testing.T) {
	inbox := "https://one.example/shared-users-inbox"
	recipients := []Recipient{
		{ID: mustURL(t, "https://one.example/users/alice"), Inbox: mustURL(t, inbox)},
		{ID: mustURL(t, "https://one.example/users/bob"), Inbox: mustURL(t, inbox)},
	}

	targets := InboxTargets(recipients, false, nil)
	if len(targets) != 1 {
		t.Fatalf("expected one entry, got %d", len(targets))
	}
	identities := targets[inbox]
	if len(identities) != 2 {
		t.Fatalf("expected both identities, got %v", identities)
	}
	if _, ok := identities["https://one.example/users/alice"]; !ok {
		t.Fatal("missing alice")
	}
	if _, ok := identities["https://one.example/users/bob"]; !ok {
		t.Fatal("missing bob")
	}
}

func TestInboxTargetsPrefersSharedInbox(t *testing.T) {
	recipients := []Recipient{{
		ID:          mustURL(t, "https://one.example/users/alice"),
		Inbox:       mustURL(t, "https://one.example/users/alice/inbox"),
		SharedInbox: mustURL(t, "https://one.example/inbox"),
	}}

	targets := InboxTargets(recipients, true, nil)
	if _, ok := targets["https://one.example/inbox"]; !ok {
		t.Fatalf("expected the shared inbox as key, got %v", targets)
	}
	if len(targets) != 1 {
		t.Fatalf("expected one entry, got %d", len(targets))
	}
}

func TestInboxTargetsNoPreferenceUsesPersonal(t *testing.T) {
	recipients := []Recipient{{
		ID:          mustURL(t, "https://one.example/users/alice"),
		Inbox:       mustURL(t, "https://one.example/users/alice/inbox"),
		SharedInbox: mustURL(t, "https://one.example/inbox"),
	}}

	targets := InboxTargets(recipients, false, nil)
	if _, ok := targets["https://one.example/users/alice/inbox"]; !ok {
		t.Fatalf("expected the personal inbox as key, got %v", targets)
	}
}

func TestInboxTargetsExclusionComparesOriginsOnly(t *testing.T) {
	recipients := []Recipient{{
		ID:    mustURL(t, "https://one.example/users/alice"),
		Inbox: mustURL(t, "https://one.example/users/alice/inbox"),
	}}
	exclude := []*url.URL{mustURL(t, "https://one.example/totally/other/path")}

	targets := InboxTargets(recipients, false, exclude)
	if len(targets) != 0 {
		t.Fatalf("expected the recipient to be omitted entirely, got %v", targets)
	}
}

func TestInboxTargetsSameOriginKeysStaySeparate(t *testing.T) {
	recipients := []Recipient{
		{
			ID:    mustURL(t, "https://one.example/users/alice"),
			Inbox: mustURL(t, "https://one.example/users/alice/inbox"),
		},
		{
			ID:    mustURL(t, "https://one.example/users/bob"),
			Inbox: mustURL(t, "https://one.example/users/bob/inbox"),
		},
	}

	targets := InboxTargets(recipients, false, nil)
	if len(targets) != 2 {
		t.Fatalf("same-origin inboxes with different paths must not merge, got %v", targets)
	}
}

func TestInboxTargetsSkipsRecipientWithoutInbox(t *testing.T) {
	recipients := []Recipient{{ID: mustURL(t, "https://one.example/users/alice")}}
	if targets := InboxTargets(recipients, false, nil); len(targets) != 0 {
		t.Fatalf("expected no targets, got %v", targets)
	}
}

func TestInboxTargetsSkipsRecipientWithoutIdentity(t *testing.T) {
	recipients := []Recipient{{Inbox: mustURL(t, "https://one.example/users/alice/inbox")}}
	if targets := InboxTargets(recipients, false, nil); len(targets) != 0 {
		t.Fatalf("expected no targets, got %v", targets)
	}
}

func TestInboxTargetsDeduplicatesIdentities(t *testing.T) {
	recipient := Recipient{
		ID:    mustURL(t, "https://one.example/users/alice"),
		Inbox: mustURL(t, "https://one.example/users/alice/inbox"),
	}

	targets := InboxTargets([]Recipient{recipient, recipient}, false, nil)
	identities := targets["https://one.example/users/alice/inbox"]
	if len(identities) != 1 {
		t.Fatalf("expected a deduplicated identity set, got %v", identities)
	}
}

func TestInboxTargetsSharedInboxExcludedByOrigin(t *testing.T) {
	recipients := []Recipient{{
		ID:          mustURL(t, "https://one.example/users/alice"),
		Inbox:       mustURL(t, "https://two.example/users/alice/inbox"),
		SharedInbox: mustURL(t, "https://one.example/inbox"),
	}}
	exclude := []*url.URL{mustURL(t, "https://one.example/")}

	// The chosen inbox is the shared one, and its origin is excluded:
	// the recipient is skipped, not rerouted to the personal inbox.
	targets := InboxTargets(recipients, true, exclude)
	if len(targets) != 0 {
		t.Fatalf("expected the recipient to be skipped, got %v", targets)
	}
}
