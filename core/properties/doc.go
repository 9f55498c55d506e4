// Package properties extracts metadata from media companion files.
//
// Extractors are registered per file extension. Files with an extension that
// has no extractor get an empty property map. Malformed metadata never fails a
// scan: the registry logs a warning and returns an empty map instead.
//
// Built-in extractors:
//   - .nfo: the first http(s) URL found in the file, as {"url": "..."}
//   - .yml, .yaml: the top-level YAML object, optionally restricted to a whitelist of keys
package properties
