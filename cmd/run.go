package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/logging"
	"github.com/abhisek/strandwise/internal/metrics"
	"github.com/abhisek/strandwise/internal/store"
)

// openService opens the store and builds the advisor. The returned func
// writes the metrics textfile, if configured, and closes the store.
func openService(cmd *cobra.Command) (*advisor.Service, func(), error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logging.Ctx(cmd.Context()).Debug().Str("db", dbPath).Msg("store opened")

	m := metrics.New()
	svc := advisor.NewService(advisor.Repos{
		Datasets:     st.Datasets(),
		QuestionSets: st.QuestionSets(),
		Results:      st.Results(),
	}, cfg.Tuning.Selector(), m)

	done := func() {
		if path := cfg.Metrics.Textfile; path != "" {
			if err := m.WriteTextfile(path); err != nil {
				logging.Ctx(cmd.Context()).Warn().Err(err).Str("path", path).Msg("write metrics textfile")
			}
		}
		if err := st.Close(); err != nil {
			logging.Ctx(cmd.Context()).Warn().Err(err).Msg("close store")
		}
	}
	return svc, done, nil
}

// datasetID resolves a dataset argument given as an ID or a name.
func datasetID(cmd *cobra.Command, svc *advisor.Service, ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}
	ds, err := svc.FindDataset(cmd.Context(), ref)
	if err != nil {
		return 0, err
	}
	return ds.ID, nil
}
