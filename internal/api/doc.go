// Package api wires the Transpass REST API: public passport pages, account
// endpoints, the authenticated /api/v1 surface and the live scan feed.
//
//	@title						Transpass API
//	@version					1.0
//	@description				Digital product passports: products, their components and QR codes, consumer scans and company scan analytics.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT from /auth/login, sent as "Bearer <token>".
package api
