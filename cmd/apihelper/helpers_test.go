package main

import (
	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/server"
)

type snapshotOf client.Snapshot

func (s snapshotOf) Snapshot() client.Snapshot { return client.Snapshot(s) }

func serverDefaults() server.Config {
	var cfg server.Config
	cfg.ApplyDefaults()
	return cfg
}
