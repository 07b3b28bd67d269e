// Package api wraps each backend resource in a small typed module.
//
// # Overview
//
// Every function maps one backend endpoint to a call on an httpclient.Client:
// a fixed path, an HTTP verb, and a typed body or query. There is no validation
// or transformation beyond assembling query parameters; failures are classified
// and presented by the HTTP client before they reach the caller.
//
// # Resources
//
//   - AuthAPI:      /auth/login, /auth/register, /auth/me
//   - FilesAPI:     /files/upload, /files/list, /files/{id}/preview, /files/{id}/download, DELETE /files/{id}
//   - DocumentsAPI: /documents/review, /documents/generate, /documents/list, /documents/{id},
//     classification, preview, download and the generation conversation endpoints
//   - TemplatesAPI: /templates/create, /templates/list, /templates/{id}
//   - VersionsAPI:  /versions/create, /versions/list/{documentId}, /versions/{id}, compare, rollback
//   - AuditLogsAPI: /audit-logs/list, /audit-logs/stats, /audit-logs/{id}, export
//   - RulesAPI:     /admin/rules/...
//   - HealthAPI:    /health/status, /health/fallback-stats, /health/check
//   - EditorAPI:    /onlyoffice/config, /onlyoffice/health
//
// # Timeouts
//
// Document review and generation go through the long-running client (120s by
// default); everything else uses the standard client.
//
// # Usage
//
//	c := api.New(standard, longRunning)
//	files, err := c.Files.List(ctx, 0, 20)
package api
