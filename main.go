package main

import (
	"convention-scheduler-server/routes"
	"convention-scheduler-server/services"
	"convention-scheduler-server/storage"
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	var drafts services.DraftStore
	if os.Getenv("SCHEDULE_STORE") == "memory" {
		log.Println("⚠️  SCHEDULE_STORE=memory, schedules are not persisted")
		routes.Schedule = storage.NewMemoryStore()
	} else {
		db := storage.InitializeDB()
		routes.Schedule = storage.NewScheduleRepository(db)
		storage.InitializeRedis()
		drafts = storage.NewRedisDrafts(storage.Redis)
	}

	grid, err := timeline.LoadGrid(os.Getenv("GRID_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("❌ Invalid grid config: %v", err)
	}
	routes.Grid = grid

	routes.Editors = services.NewEditorService(routes.Schedule, drafts, grid)
	idle := services.DefaultIdleTimeout
	if v := os.Getenv("EDITOR_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			idle = d
		} else {
			log.Printf("⚠️  Ignoring EDITOR_IDLE_TIMEOUT=%q: %v", v, err)
		}
	}
	sweeper, err := services.StartIdleSweeper(routes.Editors, "@every 1m", idle)
	if err != nil {
		log.Fatalf("❌ Could not start idle sweeper: %v", err)
	}

	app := iris.New()
	app.Validator = timeline.NewValidator()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok", "editorSessions": routes.Editors.Count()})
	})

	api := app.Party("/api", accessTokenVerifierMiddleware)
	routes.Mount(api)

	iris.RegisterOnInterrupt(func() {
		sweeper.Stop()
		routes.Editors.CloseAll()
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Printf("🚀 Convention scheduler listening on :%s", port)
	app.Listen(fmt.Sprintf(":%s", port))
}
