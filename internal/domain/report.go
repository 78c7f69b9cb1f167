package domain

import (
	"fmt"
	"time"
)

// PublishResult is the outcome record of one (article, platform) task.
type PublishResult struct {
	ArticleID string
	Article   string
	Platform  string
	Status    TaskStatus
	Success   bool
	ErrorKind ErrorKind
	Error     string
	Timestamp time.Time
}

// BatchReport aggregates every task outcome of one run. Succeeded counts
// verified and submitted-unverified publishes; Unverified is the subset an
// operator should confirm by hand. Succeeded+Failed always equals Total.
type BatchReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Unverified int
	Results    []PublishResult
}

// Append folds one result into the counters.
func (r *BatchReport) Append(res PublishResult) {
	r.Results = append(r.Results, res)
	if res.Success {
		r.Succeeded++
		if res.Status == StatusSubmittedUnverified {
			r.Unverified++
		}
	} else {
		r.Failed++
	}
}

// ArticleResults is one article's per-platform outcomes.
type ArticleResults struct {
	Article string
	Results []PublishResult
}

// ByArticle groups results per article in first-seen order, keeping each
// group's platform order.
func (r *BatchReport) ByArticle() []ArticleResults {
	index := make(map[string]int, len(r.Results))
	var grouped []ArticleResults
	for _, res := range r.Results {
		i, ok := index[res.Article]
		if !ok {
			i = len(grouped)
			index[res.Article] = i
			grouped = append(grouped, ArticleResults{Article: res.Article})
		}
		grouped[i].Results = append(grouped[i].Results, res)
	}
	return grouped
}

// Summary renders a short operator-facing digest of the run, outcomes
// grouped under their article.
func (r *BatchReport) Summary() string {
	out := fmt.Sprintf("publish run %s: %d tasks, %d succeeded (%d unverified), %d failed\n",
		r.RunID, r.Total, r.Succeeded, r.Unverified, r.Failed)
	for _, group := range r.ByArticle() {
		for _, res := range group.Results {
			mark := "ok"
			if res.Status == StatusSubmittedUnverified {
				mark = "unverified"
			}
			if !res.Success {
				mark = fmt.Sprintf("failed (%s)", res.ErrorKind)
			}
			out += fmt.Sprintf("- %s -> %s: %s\n", group.Article, res.Platform, mark)
		}
	}
	return out
}
