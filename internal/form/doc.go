// Package form implements the resource form: a YAML draft of one custom
// resource that the user edits, diffs against what is deployed (or against
// the operator's example), and submits for deployment.
//
// A Controller is driven by discrete events and is not safe for concurrent
// use; the owner serialises calls.
//
//	c := form.NewController(defaults, deployed, deploy)
//	c.OnDraftChange(text)
//	if err := c.OnSubmit(); err != nil {
//		// c.ParseError() holds the message shown next to the editor
//	}
package form
