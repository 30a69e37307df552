// Command newsapi serves the news REST API and manages its database.
//
// @title        News API
// @version      1.0
// @description  Topics, articles, comments and users of a news forum.
// @BasePath     /api
package main

import (
	_ "github.com/joho/godotenv/autoload" // loads .env before config is read

	"github.com/tbourn/go-news-backend/cmd/newsapi/commands"
)

func main() {
	commands.Execute()
}
