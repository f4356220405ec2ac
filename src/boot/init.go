package boot

import (
	"log"
	"time"

	"nxtours/src/db"
	"nxtours/src/lib"
	"nxtours/src/models"
	"nxtours/src/utils"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Tour{},
		&models.DepartureDate{},
		&models.Extra{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the sweep that expires pending bookings whose payment
// hold lapsed, releasing their seats.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(func() {
		if err := utils.ExpirePendingBookings(); err != nil {
			log.Printf("Error on expiry sweep: %s\n", err.Error())
		}
	}, 1*time.Minute)
	if err != nil {
		log.Printf("Error scheduling expiry sweep: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled expiry sweep job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	lib.StopScheduler()
}
