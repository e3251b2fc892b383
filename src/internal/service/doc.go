// Package service implements the operations behind the dashboard's REST
// resources on top of the storage package.
//
// CollectionService provides list, create, update (shallow merge) and delete
// on collection documents and is the only place item ids are assigned.
// SingletonService reads and wholesale-replaces singleton documents.
//
// Every operation reloads its document from disk and rewrites it in full.
// Unless the store serializes writes, two concurrent updates of the same
// document can lose one of the changes.
package service
