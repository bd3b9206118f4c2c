// Command seed_products fills the configured store with sample products for
// local testing. It goes through the service layer, so the rows get the same
// timestamps and validation as ones created over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"product-service/internal/config"
	"product-service/internal/database"
	"product-service/internal/model"
	"product-service/internal/service"

	"github.com/rs/zerolog"
)

var sampleNames = []string{
	"Widget",
	"Gadget",
	"Blue Widget Pro",
	"Sprocket",
	"Thingamajig",
	"Doohickey",
	"Gizmo",
	"Whatsit",
}

func main() {
	count := flag.Int("n", len(sampleNames), "number of products to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := database.Open(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Ready(ctx); err != nil {
		log.Fatalf("Store not ready: %v", err)
	}

	svc := service.NewProductService(store.Products(), zerolog.Nop())

	for i := 0; i < *count; i++ {
		name := sampleNames[i%len(sampleNames)]
		if i >= len(sampleNames) {
			name = fmt.Sprintf("%s %d", name, i/len(sampleNames)+1)
		}

		product, err := svc.Create(ctx, &model.ProductRequest{Name: &name})
		if err != nil {
			log.Fatalf("Failed to create %q: %v", name, err)
		}

		fmt.Printf("Created product %d: %s\n", product.ID, product.Name)
	}

	fmt.Printf("\n%d sample products created in %s store\n", *count, store.Backend())
}
