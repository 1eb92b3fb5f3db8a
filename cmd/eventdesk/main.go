// cmd/eventdesk/main.go
package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventdesk/app"
	"github.com/dalemusser/eventdesk/internal/app/bootstrap"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
