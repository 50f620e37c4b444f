package main

import (
	"context"
	"os"

	"uniloans/app"
	"uniloans/config"
	"uniloans/db"
	"uniloans/routes"
	"uniloans/sweeper"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	repo := db.NewRepo(application.DB)
	app.BootstrapFirstAdmin(context.Background(), application.Config, repo, application.Log)

	go application.Hub.Run()

	routes.RegisterRoutes(application.Router, application)

	sw := sweeper.New(repo, application.Hub, application.Log.Named("sweeper"),
		application.Config.SweepInterval, application.Config.SweepInitialDelay)
	sw.Start()
	defer sw.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	application.Log.Info("listening", zap.String("port", port))
	if err := application.Router.Run(":" + port); err != nil {
		application.Log.Fatal("server", zap.Error(err))
	}
}
