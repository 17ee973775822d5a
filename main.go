package main

import (
	"log"

	"lms/config"
	"lms/database"
	authRoutes "lms/routers/authRoutes"
	cartRoutes "lms/routers/cartRoutes"
	checkoutRoutes "lms/routers/checkoutRoutes"
	couponRoutes "lms/routers/couponRoutes"
	courseRoutes "lms/routers/courseRoutes"
	learningPathRoutes "lms/routers/learningPathRoutes"
	mentorshipRoutes "lms/routers/mentorshipRoutes"
	walletRoutes "lms/routers/walletRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve stored certificates and other static files
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	cartRoutes.SetupCartRoutes(app)
	checkoutRoutes.SetupCheckoutRoutes(app)
	walletRoutes.SetupWalletRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	learningPathRoutes.SetupLearningPathRoutes(app)
	couponRoutes.SetupCouponRoutes(app)
	mentorshipRoutes.SetupMentorshipRoutes(app)

	utils.InitializeSchedulers()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
