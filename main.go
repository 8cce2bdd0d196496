package main

import (
	"Compass/FiberConfig"
	"Compass/Models"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	Models.Connect()
	FiberConfig.FiberConfig()
}
