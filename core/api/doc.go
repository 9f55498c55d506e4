// Package api is the client of the Lair media center HTTP API.
//
// All requests are JSON, authenticated with a bearer token and sent under the
// /api prefix of the configured server URL. The client performs no retries:
// transport failures and responses with an unexpected status code are
// returned as errors, the latter as *UnexpectedResponseError.
//
// # Resources
//
//   - Scanners: the identity of this client and its local source paths
//   - Sources: media sources with their scan paths and ignore patterns
//   - Files: the remote file catalog, paginated through X-Pagination-* headers
//   - Scans: reconciliation runs and their change batches
//   - Settings: global media settings (ignore patterns)
//
// # Usage
//
//	client, err := api.NewClient(cfg.API)
//	source, err := client.FindSource(ctx, "media")
//	files, page, err := client.ListFiles(ctx, api.FileQuery{SourceID: source.ID, Directory: "/"}, 0, 500)
package api
