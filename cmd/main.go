package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"GeorgianJoker/config"
	"GeorgianJoker/internal/auth"
	"GeorgianJoker/internal/game/manager"
	"GeorgianJoker/internal/matchmaker"
	"GeorgianJoker/internal/middleware"
	"GeorgianJoker/internal/storage"
	"GeorgianJoker/internal/utils"
	"GeorgianJoker/internal/websocket"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. Storage: redis for queues and audit, postgres for games
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}
	if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
		utils.Error.Fatalf("Postgres init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. Hub (must run before anything touches it)
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 4. GameManager
	//-------------------------------------------------------
	gameMgr := manager.NewGameManager(hub, config.C.Game, storage.Rdb, storage.DB)

	//-------------------------------------------------------
	// 5. Matchmaker: four-seat tables, bot fill on timeout
	//-------------------------------------------------------
	repo := matchmaker.NewRedisRepo(storage.Rdb)
	svc := matchmaker.NewService(repo, 300, config.C.Game.MatchmakingTimeout, hub)
	gameMgr.Matchmaker = svc

	svc.OnRoomReady = func(room *matchmaker.Room) {
		utils.Info.Printf("Room ready: %s Players=%v", room.ID, room.Players)
		if err := gameMgr.StartRoom(room); err != nil {
			utils.Error.Printf("StartRoom error: %v", err)
		}
	}

	hub.OnIncoming = gameMgr.HandlePlayerMessage
	hub.OnConnect = gameMgr.HandleConnect
	hub.OnDisconnect = gameMgr.HandleDisconnect

	//-------------------------------------------------------
	// 6. Auth: guest identities
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)
	authGroup := r.Group("/auth")
	{
		ah := auth.NewHandler()
		authGroup.POST("/login", ah.Login)
		authGroup.POST("/refresh", middleware.JwtAuthMiddleware(secret), ah.Refresh)
	}

	//-------------------------------------------------------
	// 7. Authenticated surface: websocket + matchmaking
	//-------------------------------------------------------
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))

		mh := matchmaker.NewHandler(svc)
		authed.POST("/match/join", mh.Join)
		authed.POST("/match/cancel", mh.Cancel)
	}

	//-------------------------------------------------------
	// 8. Serve
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	r.Run(config.C.Server.Port)
}
