// Package http exposes browsing sessions over a JSON API built on gin.
//
// Every route under /sessions/:id resolves the session first and answers 404
// when it does not exist. Errors are reported as
//
//	{"success": false, "kind": "<taxonomy kind>", "error": "<message>"}
//
// with the status chosen from the kind (not_found 404, already_exists 409,
// permission_denied 403, invalid_name and not_directory 400, cancelled 499,
// unsupported 501, anything else 500).
package http
