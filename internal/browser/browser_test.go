package browser

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsDisableAutomationIndicators(t *testing.T) {
	flags := Options{Headless: true}.flags()

	assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
	assert.Equal(t, false, flags["enable-automation"])
	assert.Equal(t, true, flags["headless"])

	flags = Options{}.flags()
	assert.Equal(t, false, flags["headless"])
}

func TestAllocatorOptionsIncludeExecPath(t *testing.T) {
	base := len(Options{}.allocatorOptions())
	assert.Equal(t, base+1, len(Options{ExecPath: "/opt/chrome"}.allocatorOptions()))
}

func TestSessionErrorUnwraps(t *testing.T) {
	cause := errors.New("exec: not found")
	err := error(&SessionError{Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to open browser session")
}

func TestOpenMissingBinary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Open(ctx, Options{ExecPath: "/nonexistent/chrome", Headless: true})
	var sessionErr *SessionError
	assert.ErrorAs(t, err, &sessionErr)
}

func TestChromeSession(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a real browser")
	}
	path := ""
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		t.Skip("no Chrome binary on PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{ExecPath: path, Headless: true})
	require.NoError(t, err)
	defer s.Close()

	page := `data:text/html,<table><tr id="a1"><td><a href="https://example.org/j">Journal</a></td></tr></table>`
	require.NoError(t, s.Navigate(ctx, page))
	require.NoError(t, s.WaitPresent(ctx, `tr[id^="a"]`))

	html, err := s.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Journal")

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
