// Package memory provides an in-process store.Store.
//
// Transactions run against a copy of the dataset under the store mutex and
// replace it on success, so they are serializable and roll back cleanly.
// Unique and foreign key constraints mirror the Postgres schema.
package memory
