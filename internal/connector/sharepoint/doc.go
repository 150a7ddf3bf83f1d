// Package sharepoint publishes SharePoint lists as generic shapes.
//
// Structure:
//
//	config.go     - Settings parsing (site_url, username, password, domain)
//	fieldname.go  - Internal field key codec
//	session.go    - Remote session contract
//	rest.go       - Session over the SharePoint REST API
//	discovery.go  - Catalog discovery
//	publish.go    - Record streaming
//	publisher.go  - endpoint.Publisher implementation
//	metrics.go    - Prometheus instrumentation
//
// Template ID: http.sharepoint
package sharepoint
