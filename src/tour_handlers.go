package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"nxtours/src/availability"
	"nxtours/src/db"
	"nxtours/src/models"
	"nxtours/src/types"

	"github.com/gin-gonic/gin"
)

func tourHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tours", func(ctx *gin.Context) {
			db := db.GetDb()
			var tours []models.Tour
			if err := db.
				Where(&models.Tour{IsActive: true}).
				Order("created_at desc").
				Find(&tours).Error; err != nil {
				log.Printf("Error retrieving Tours: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tours, "count": len(tours)})
		}).
		GET("/tours/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tour, err := fetchTour(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "tour not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tour})
		}).
		GET("/tours/:id/departures", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			allQuery := ctx.DefaultQuery("all", "false")
			all, err := strconv.ParseBool(allQuery)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tour, err := fetchTour(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "tour not found"})
				return
			}
			if all {
				ctx.JSON(http.StatusOK, gin.H{"data": tour.Departures, "count": len(tour.Departures)})
				return
			}
			bookable := availability.ListBookable(*tour, time.Now())
			ctx.JSON(http.StatusOK, gin.H{"data": bookable, "count": len(bookable)})
		}).
		GET("/tours/:id/departures/best", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tour, err := fetchTour(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "tour not found"})
				return
			}
			best := availability.BestDiscount(*tour, time.Now())
			if best == nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": best})
		})
	return g
}
