// Package rangecache caches ranged data of series at several levels of
// detail. For every (serie, level) it tracks three ordered interval layers
// and the fetched segments:
//
//	Base  - coverage known for a while
//	Top   - coverage readers currently need, including what is in flight
//	Fetch - ranges requested from the data source and not yet answered
//
// A fetch cycle:
//
//	missing, _ := cache.Request(ctx, rangecache.NewRequest("cpu", "1m", from, to))
//	for _, m := range missing {
//		segs := loadFromSource(m)                    // your data source
//		_, _ = cache.Complete(ctx, req(m), segs)     // reconcile layers, persist
//	}
//	segs := cache.Segments("cpu", "1m", from, to)
//
// Components:
//   - Provider: byte store with TTL holding level snapshots (Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes segment payloads.
//   - GenStore: generation counter per level. Local by default, Redis for
//     multi-replica setups. Snapshots are written only while the generation
//     they were built against is current, and rejected on Load otherwise.
//
// Keys:
//
//	level:<ns>:<serie>:<level>
//
// The interval algebra lives in subpackages: interval (ranges), segment
// (ordered segment arrays), diffset (set add/subtract with change reports)
// and layered (layer reconciliation).
package rangecache
