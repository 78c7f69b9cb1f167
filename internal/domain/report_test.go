package domain

import (
	"strings"
	"testing"
)

func TestAppendKeepsCountersConsistent(t *testing.T) {
	t.Parallel()

	report := BatchReport{Total: 3}
	report.Append(PublishResult{Article: "a", Platform: "csdn", Status: StatusVerified, Success: true})
	report.Append(PublishResult{Article: "a", Platform: "juejin", Status: StatusSubmittedUnverified, Success: true,
		ErrorKind: KindVerificationAmbiguous})
	report.Append(PublishResult{Article: "b", Platform: "csdn", Status: StatusFailed,
		ErrorKind: KindLoginTimeout})

	if report.Succeeded != 2 || report.Failed != 1 || report.Unverified != 1 {
		t.Fatalf("unexpected counters: %+v", report)
	}
	if report.Succeeded+report.Failed != report.Total {
		t.Fatalf("succeeded(%d)+failed(%d) != total(%d)", report.Succeeded, report.Failed, report.Total)
	}
}

func TestByArticleGroupsInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	// Interleaved insertion, platform-major.
	report := BatchReport{}
	report.Append(PublishResult{Article: "beta", Platform: "csdn", Status: StatusVerified, Success: true})
	report.Append(PublishResult{Article: "alpha", Platform: "csdn", Status: StatusVerified, Success: true})
	report.Append(PublishResult{Article: "beta", Platform: "juejin", Status: StatusFailed})

	grouped := report.ByArticle()
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if grouped[0].Article != "beta" || grouped[1].Article != "alpha" {
		t.Fatalf("first-seen order lost: %s, %s", grouped[0].Article, grouped[1].Article)
	}
	if len(grouped[0].Results) != 2 || grouped[0].Results[1].Platform != "juejin" {
		t.Fatalf("platform order inside a group lost: %+v", grouped[0].Results)
	}
}

func TestSummaryGroupsOutcomesByArticle(t *testing.T) {
	t.Parallel()

	report := BatchReport{RunID: "run-1", Total: 3}
	report.Append(PublishResult{Article: "beta", Platform: "csdn", Status: StatusVerified, Success: true})
	report.Append(PublishResult{Article: "alpha", Platform: "csdn", Status: StatusFailed,
		ErrorKind: KindElementInteraction})
	report.Append(PublishResult{Article: "beta", Platform: "juejin", Status: StatusSubmittedUnverified, Success: true})

	out := report.Summary()

	if !strings.Contains(out, "3 tasks, 2 succeeded (1 unverified), 1 failed") {
		t.Errorf("header counters wrong: %q", out)
	}
	// Both beta lines must precede the alpha line.
	alpha := strings.Index(out, "- alpha")
	if alpha < 0 {
		t.Fatalf("alpha line missing: %q", out)
	}
	if i := strings.Index(out, "- beta -> juejin"); i < 0 || i > alpha {
		t.Errorf("beta outcomes not grouped together: %q", out)
	}
	if !strings.Contains(out, "failed (element_interaction)") {
		t.Errorf("failure kind missing from digest: %q", out)
	}
}
