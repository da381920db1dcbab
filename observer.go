package todoui

import (
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/toast"
	"golang.org/x/net/html"
)

// Observer receives every engine event a page emits.
type Observer interface {
	toast.Observer
	gate.Observer
}

// Observers fans events out to several observers in order.
type Observers []Observer

var _ Observer = Observers(nil)

func (o Observers) NotificationShown(n *toast.Notification) {
	for _, x := range o {
		x.NotificationShown(n)
	}
}

func (o Observers) NotificationRemoved(n *toast.Notification) {
	for _, x := range o {
		x.NotificationRemoved(n)
	}
}

func (o Observers) SubmissionBlocked(f *html.Node, errors int) {
	for _, x := range o {
		x.SubmissionBlocked(f, errors)
	}
}

func (o Observers) BusyEntered(f *html.Node) {
	for _, x := range o {
		x.BusyEntered(f)
	}
}

func (o Observers) BusyRestored(f *html.Node, reason string) {
	for _, x := range o {
		x.BusyRestored(f, reason)
	}
}

func (o Observers) ToggleDeferred(f *html.Node) {
	for _, x := range o {
		x.ToggleDeferred(f)
	}
}

func (o Observers) ConfirmResolved(f *html.Node, accepted bool) {
	for _, x := range o {
		x.ConfirmResolved(f, accepted)
	}
}

func (o Observers) NativeSubmitted(f *html.Node, kind gate.Kind, err error) {
	for _, x := range o {
		x.NativeSubmitted(f, kind, err)
	}
}
