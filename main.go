package main

import (
	"log"

	"webhook-proxy/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
