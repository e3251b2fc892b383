// Package storage reads and writes the JSON documents behind every dashboard
// resource.
//
// Each resource lives in one file inside the data directory. A collection
// file holds a JSON array of objects (items), a singleton file holds one JSON
// object, or an array if one was written in its place. Every read loads the whole file and every write rewrites it, pretty
// printed with two-space indentation and a trailing newline. There is no
// atomic rename and no backup.
//
// A missing or unparseable file never fails a read: the caller gets an empty
// document of the right kind together with a ReadResult saying what happened.
// Corruption is logged as a warning.
//
// Reads and writes are not serialized across requests unless the Store was
// created with WithSerializedWrites, in which case callers hold Lock(name)
// across their read-modify-write.
package storage
