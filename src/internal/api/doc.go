// Package api provides the REST API for the chuck-hq dashboard.
//
// All endpoints live under /api and are generated from the resource registry
// in the configuration:
//
//	GET    /api/{collection}        list items
//	POST   /api/{collection}        create item (201)
//	PUT    /api/{collection}/{id}   merge into item
//	DELETE /api/{collection}/{id}   remove item (204)
//	GET    /api/{singleton}         read object
//	PUT    /api/{singleton}         replace object
//
// # Response Format
//
// Successful responses carry the document or item itself, without an
// envelope. Errors use a flat body:
//
//	{"error": "Not found"}
//
// Request bodies are not validated beyond being a JSON object or array; unknown keys
// are stored and returned verbatim.
package api
