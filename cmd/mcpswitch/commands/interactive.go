package commands

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// pickServers lets the user choose servers from views. An aborted picker
// yields no selection and no error. Tests replace it.
var pickServers = func(prompt string, views []*reconcile.View) ([]string, error) {
	if len(views) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		views,
		func(i int) string {
			return views[i].Name
		},
		fuzzyfinder.WithPromptString(prompt+"> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			v := views[i]
			return fmt.Sprintf("Name: %s\nEnabled: %s\nDisabled store: %s\n\n%s",
				v.Name,
				clientList(v.EnabledClients()),
				clientList(v.DisabledFor),
				summarize(v.Definition),
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}

	names := make([]string, 0, len(idxs))
	for _, i := range idxs {
		names = append(names, views[i].Name)
	}
	return names, nil
}
