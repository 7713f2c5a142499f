package server

import (
	"net/http"

	handler "auction-escrow/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// RouterOptions configure the HTTP surface
type RouterOptions struct {
	JWTSecret     []byte
	FaucetEnabled bool
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface, opts RouterOptions) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auctionHandler := handler.NewAuctionHandler(auctionService)

	api := router.Group("")
	api.Use(AuthMiddleware(opts.JWTSecret))

	assets := api.Group("/assets")
	{
		assets.POST("", auctionHandler.CreateAssetHandler)
		assets.GET("/:asset_id", auctionHandler.GetAssetHandler)
	}

	auctions := api.Group("/auctions")
	{
		auctions.POST("", auctionHandler.OpenAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.GET("/:auction_id/events", auctionHandler.GetEventsHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/settle", auctionHandler.SettleHandler)
		auctions.POST("/:auction_id/bids/:bid_id/withdraw", auctionHandler.WithdrawBidHandler)
		auctions.POST("/:auction_id/proceeds/withdraw", auctionHandler.WithdrawProceedsHandler)
	}

	users := api.Group("/users")
	{
		users.GET("/me/auctions", auctionHandler.GetMyAuctionsHandler)
	}

	wallet := api.Group("/wallet")
	{
		wallet.GET("", auctionHandler.GetWalletHandler)
		if opts.FaucetEnabled {
			wallet.POST("/deposit", auctionHandler.DepositHandler)
		}
	}

	return router
}
