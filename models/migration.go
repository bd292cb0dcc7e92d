package models

import (
	"log"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Organization{}, &User{},
		&AssetGroup{}, &Schedule{},
		&Equipment{}, &InspectionRecord{},
		&Plant{}, &ServiceRecord{},
		&Document{}, &History{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
