package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"nxtours/src/boot"
	"nxtours/src/config"
	"nxtours/src/middlewares"
	"nxtours/src/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// notfuture rejects RFC3339 timestamps after the server clock, e.g. a
// cancellation request dated ahead of time.
var notFutureValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return false
	}
	return !datetime.After(time.Now())
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	tourHandlers(apiv1)
	return apiv1
}

func protectedRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.Use(middlewares.IdentityMiddleware)
	checkoutHandlers(apiv1)
	bookingHandlers(apiv1)
	return apiv1
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notfuture", notFutureValidatorFunc)
	}
}

func main() {
	if types.Env(config.API_ENV) == types.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	router := setupRouter()
	maintenanceModeMiddleware(router)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{os.Getenv("WEB_ORIGIN")}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "X-User-ID", "X-Tenant-ID"}
	router.Use(cors.New(corsConfig))

	publicRoutes(router)
	protectedRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
