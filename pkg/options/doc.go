// Package options stores the cache-control settings edited by site
// administrators and exposes them to the resolver.
//
// Settings are kept as a raw option tree (Options) exactly as an admin
// screen, a YAML file or Redis hands them over. A Snapshot wraps one tree and
// answers the resolver's typed lookups, parsing every raw value defensively:
// anything malformed reads as "default".
//
// # Stores
//
//   - FileStore reads a YAML file
//   - RedisStore reads and writes one Redis hash per settings group
//   - SnapshotCache keeps the last successfully loaded tree in LevelDB
//
// # Reloading
//
//	holder := options.NewHolder(store, cache, options.HolderConfig{
//		Environment: "development",
//	}, logger)
//
//	// Load once, then keep reloading in the background
//	if err := holder.Reload(ctx); err != nil {
//		logger.Warn().Err(err).Msg("Serving default settings")
//	}
//	go holder.Run(ctx, time.Minute)
//
//	// Per request
//	decision := res.Resolve(pageCtx, holder.Current(), upstream, sink)
//
// A failed reload keeps the previous snapshot. When the primary store fails
// and no snapshot has been loaded yet, the last-known-good tree from the
// SnapshotCache is used.
//
// # Metrics
//
//   - cachecontrol_options_reloads_total{store,result} - Reload attempts
//   - cachecontrol_options_load_retries_total{store} - Load retries
//   - cachecontrol_options_loaded_timestamp_seconds - Time of the active snapshot
//   - cachecontrol_options_store_errors_total{store,operation} - Store errors
package options
