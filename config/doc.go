// Package config loads pool options from a file and the environment.
//
// # Keys
//
//	┌───────────────────┬──────────────────────────────┬────────────┬──────────────────────────────┐
//	│ Key               │ Environment                  │ Default    │ Description                  │
//	├───────────────────┼──────────────────────────────┼────────────┼──────────────────────────────┤
//	│ name              │ STEALPOOL_NAME               │ pool-<id>  │ Pool name in logs/metrics    │
//	│ workers           │ STEALPOOL_WORKERS            │ GOMAXPROCS │ Number of workers            │
//	│ steal_probe_limit │ STEALPOOL_STEAL_PROBE_LIMIT  │ 4          │ Peers probed per steal pass  │
//	│ history_capacity  │ STEALPOOL_HISTORY_CAPACITY   │ 100        │ Finished tasks retained      │
//	└───────────────────┴──────────────────────────────┴────────────┴──────────────────────────────┘
//
// Environment values override file values.
//
// # Usage Example
//
//	opts, err := config.Load("stealpool.yaml")
//	if err != nil {
//	    return err
//	}
//	opts.Logger = core.NewZapLogger(log)
//	pool, err := stealpool.NewWithOptions(opts)
package config
