package form

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffView is what the diff tab shows.
type DiffView struct {
	Title     string
	Event     Event
	Text      string // unified diff, empty when nothing changed
	Empty     bool
	EmptyText string
}

// Diff compares the draft with the deployed values, or with the defaults for
// an instance that is not deployed yet.
func (c *Controller) Diff() DiffView {
	event := c.DeploymentEvent()
	base, from := c.defaultValues, "example defaults"
	if event == EventUpgrade {
		base, from = c.deployedValues, "deployed values"
	}

	view := DiffView{
		Title:     "Difference from " + from,
		Event:     event,
		EmptyText: "No changes detected from " + from,
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(base),
		B:        difflib.SplitLines(c.draft.Values),
		FromFile: from,
		ToFile:   "draft",
		Context:  c.diffContext,
	})
	if err != nil {
		// Only write errors are possible and the target is a buffer.
		text = fmt.Sprintf("diff failed: %v", err)
	}
	view.Text = text
	view.Empty = text == ""
	return view
}
