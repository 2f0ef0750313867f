// Package session runs one load, mutate, save cycle over the client config
// files and the disabled-server store.
//
// Load parses every registered client and the store into a
// [reconcile.State]. Save writes back only what changed, backing up each
// client file before its first rewrite. A client whose file could not be
// parsed is never written.
package session
