package dispatch

import (
	"context"
	"errors"
)

// ManualApplier stands in when no scriptable backend exists for the
// compositor. Every apply fails with instructions for the user.
type ManualApplier struct{}

func (ManualApplier) Name() string { return "manual" }

func (ManualApplier) Capabilities() Capabilities { return Capabilities{} }

func (ManualApplier) Apply(_ context.Context, req Request) error {
	return &DispatchError{
		Kind:    FailureUnsupported,
		Monitor: req.Monitor,
		Err:     errors.New("no wallpaper backend for this compositor"),
	}
}

// Instructions tells the user how to set the wallpaper by hand.
func (ManualApplier) Instructions() string {
	return `This compositor has no scriptable wallpaper interface.
Set the wallpaper through your desktop's settings application, or install
swww and run a wlroots-based compositor to enable automatic applies.`
}

var _ Applier = ManualApplier{}
