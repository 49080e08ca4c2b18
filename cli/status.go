package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/limigrate/app/context"
	aerrors "go.hackfix.me/limigrate/app/errors"
)

// Status shows the status of all migrations.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}

	states, err := r.Status(appCtx.Ctx)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading migration status", err, "")
	}

	if len(states) == 0 {
		appCtx.Logger.Info("no migrations found", "dir", appCtx.Config.Migrations.Dir.V)
		return nil
	}

	data := make([][]string, len(states))
	for i, st := range states {
		status := string(st.Status)
		if st.Missing {
			status += " (missing)"
		}
		registered := "-"
		if st.RegisteredAt.Valid {
			registered = st.RegisteredAt.V.UTC().Format(time.DateTime)
		}
		data[i] = []string{st.Name, status, registered}
	}

	header := []string{"Name", "Status", "Registered"}
	if err = renderTable(header, data, appCtx.Stdout); err != nil {
		return fmt.Errorf("failed rendering status table: %w", err)
	}

	return nil
}
