// Package api provides the BranchBox REST API.
//
//	@title						BranchBox API
//	@version					1.0
//	@description				Per-branch preview environment orchestrator
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package api
