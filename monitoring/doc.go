// Package monitoring exports loop and dispatch counters to Prometheus
// and serves them over HTTP.
//
// Collectors read Stats() snapshots at scrape time; nothing is polled
// in the background and a scrape never touches loop internals. The
// server owns its own registry, so registration stays explicit:
//
//	srv := monitoring.NewServer(cfg, log)
//	srv.MustRegister(
//		monitoring.NewLoopCollector(mainLoop, luaLoop),
//		monitoring.NewDispatchCollector(),
//	)
//	go srv.Run(ctx)
//
// pprof endpoints are mounted under /debug/pprof when profiling is
// enabled in the config.
package monitoring
