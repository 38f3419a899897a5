package main

import "favr_backend/internal/app"

func main() {
	app.Run()
}
