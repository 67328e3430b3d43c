package main

import (
	"os"

	"github.com/kribakarans/pmap/app"
)

func main() {
	app.RunApp(os.Args)
}
