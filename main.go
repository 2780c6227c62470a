package main

import (
	"github.com/biosecret/go-todo/app"
)

//	@title						go-todo API
//	@version					1.0
//	@description				Multi-user to-do list service.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	TokenKey
//	@in							header
//	@name						token-key
func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
