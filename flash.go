package sitekit

import (
	"encoding/gob"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

func init() {
	gob.Register(Toast{})
}

const toastFlashKey = "toasts"

// addToast queues a toast in the admin session; it appears on the next
// rendered admin page. Toasts are append-only within a request cycle.
func addToast(c echo.Context, kind, text string) {
	sess, err := session.Get(adminSessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(Toast{Kind: kind, Text: text}, toastFlashKey)
	_ = sess.Save(c.Request(), c.Response())
}

func toastSuccess(c echo.Context, text string) { addToast(c, "success", text) }
func toastError(c echo.Context, text string)   { addToast(c, "error", text) }

// popToasts drains the queued toasts for rendering.
func popToasts(c echo.Context) []Toast {
	sess, err := session.Get(adminSessionName, c)
	if err != nil {
		return nil
	}
	flashes := sess.Flashes(toastFlashKey)
	if len(flashes) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())
	toasts := make([]Toast, 0, len(flashes))
	for _, f := range flashes {
		if t, ok := f.(Toast); ok {
			toasts = append(toasts, t)
		}
	}
	return toasts
}
