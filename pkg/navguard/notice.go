package navguard

import (
	"context"

	"github.com/google/uuid"
)

// NoticeAuthRequired is the kind of the notice queued on denial.
const NoticeAuthRequired = "auth_required"

// Notice is a user-facing message raised by the guard.
type Notice struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Path is the page the visitor was denied.
	Path string `json:"path,omitempty"`
}

// AuthRequired builds the standard sign-in notice for path.
func AuthRequired(path string) Notice {
	return Notice{
		ID:      uuid.NewString(),
		Kind:    NoticeAuthRequired,
		Message: "Please sign in to continue.",
		Path:    path,
	}
}

// Notifier shows notices to the visitor.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notice) {}
