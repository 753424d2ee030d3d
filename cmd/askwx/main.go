// Package main is the entry point for the askwx question answering service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/askwx/cmd/askwx/app"
)

func main() {
	app.NewApp().Run()
}
