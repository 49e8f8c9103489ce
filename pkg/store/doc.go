// Package store persists sessions, their snapshots and small configuration
// blobs.
//
// [Store] is the persistence collaborator of the view state: it implements
// [snapshot.Persister], so a view can save, rename and delete snapshots
// directly. Two implementations exist:
//
//   - [KVStore] keeps each session as one compressed JSON value in a
//     [kv.Backend] (file, memory or Redis)
//   - [MongoStore] keeps sessions as documents in a MongoDB collection and
//     updates snapshots in place
//
// [Open] picks one from the user's settings.
//
// Every operation is reported to the [observability.StoreHooks].
package store
