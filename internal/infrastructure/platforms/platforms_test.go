package platforms

import (
	"context"
	"testing"
	"time"
)

func TestHTMLHasSelector(t *testing.T) {
	t.Parallel()

	editorHTML := `
	<html><body>
	  <div class="article-bar">
	    <input class="article-bar__title" placeholder="title here">
	  </div>
	</body></html>`

	if !htmlHasSelector(editorHTML, ".article-bar input") {
		t.Fatalf("login probe must match the rendered title input")
	}
	if htmlHasSelector(editorHTML, ".user-dropdown .avatar") {
		t.Fatalf("juejin probe must not match the csdn editor")
	}
}

func TestHTMLHasSelectorLoggedOutPage(t *testing.T) {
	t.Parallel()

	loginHTML := `
	<html><body>
	  <div class="login-box">
	    <button class="login-button">Sign in</button>
	  </div>
	</body></html>`

	if htmlHasSelector(loginHTML, ".article-bar input") {
		t.Fatalf("logged-out page must not pass the login probe")
	}
}

func TestPollUntilSucceedsWhenProbeTurnsTrue(t *testing.T) {
	t.Parallel()

	ok := pollUntil(context.Background(), 10*time.Second, func() bool { return true })
	if !ok {
		t.Fatalf("poll must succeed once the probe does")
	}
}

func TestPollUntilHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := pollUntil(ctx, time.Minute, func() bool { return false })
	if ok {
		t.Fatalf("cancelled poll must report failure")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	if got := summarize("# Heading\n\nshort body"); got != "Heading short body" {
		t.Fatalf("unexpected summary: %q", got)
	}

	long := ""
	for i := 0; i < 50; i++ {
		long += "tenletters "
	}
	if got := summarize(long); len([]rune(got)) != 100 {
		t.Fatalf("summary must be capped at 100 runes, got %d", len([]rune(got)))
	}
}
