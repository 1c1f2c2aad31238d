// Package main Trivia Server API
//
//	@title			Trivia Server API
//	@version		1.0
//	@description	Real-time, multi-replica trivia game server. Players join over a WebSocket; this document covers only the small REST surface alongside it.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	Trivia Server
//	@contact.url	https://github.com/observer/trivia
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main
