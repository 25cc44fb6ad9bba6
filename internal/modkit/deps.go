package modkit

import (
	"outreach/internal/modkit/repokit"
	"outreach/internal/platform/config"
	"outreach/internal/platform/logger"
	"outreach/internal/platform/store"
)

// Deps are the shared dependencies handed to modules. PG and CH are nil when disabled.
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore fills the storage seams from an opened Store
func FromStore(cfg config.Conf, st *store.Store) Deps {
	d := Deps{Cfg: cfg, Log: *logger.Get()}
	if st != nil {
		d.Log = st.Log
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
