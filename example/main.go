package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/generator"
	"github.com/meikuraledutech/waymap/memory"
	"github.com/meikuraledutech/waymap/postgres"
	"github.com/meikuraledutech/waymap/render"
)

func main() {
	ctx := context.Background()

	// PostgreSQL when DATABASE_URL is set, otherwise everything stays in memory.
	var store waymap.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Generate ──────────────────────────────────────────────────────
	cfg := waymap.DefaultConfig()
	cfg.Layers = 6
	cfg.Slots = 4
	cfg.StartingPoints = 2
	cfg.Categories = []waymap.Category{waymap.Normal, waymap.Loot, waymap.Event}
	cfg.MarkEndpoints = true

	gen, err := generator.New(cfg)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}
	m := gen.Generate(2024)
	fmt.Printf("generated map %s: %d waypoints, %d edges, attempts=%d fallback=%v\n",
		m.ID, len(m.Waypoints), len(m.Edges), m.Attempts, m.Fallback)

	// ── Save + retrieve ───────────────────────────────────────────────
	if _, err := store.SaveMap(ctx, m); err != nil {
		log.Fatalf("save map: %v", err)
	}
	got, err := store.GetMap(ctx, m.ID)
	if err != nil {
		log.Fatalf("get map: %v", err)
	}
	fmt.Println("\nmap retrieved:")
	printJSON(got.Summary())

	// ── Walk the layers ───────────────────────────────────────────────
	for layer := range got.Layers {
		for slot := range got.Slots {
			if w := got.At(layer, slot); w != nil {
				fmt.Printf("  %-12s -> %d next\n", w.Name, len(w.Next))
			}
		}
	}

	// ── Render ────────────────────────────────────────────────────────
	canvas := render.NewSVGCanvas()
	frame := render.NewRenderer(canvas, nil).Draw(got)
	fmt.Printf("\nrendered %d segments (%d skipped, pool %d)\n", len(frame.Segments), frame.Skipped, frame.PoolSize)

	f, err := os.Create("map.svg")
	if err != nil {
		log.Fatalf("create svg: %v", err)
	}
	if _, err := canvas.WriteTo(f); err != nil {
		log.Fatalf("write svg: %v", err)
	}
	f.Close()
	fmt.Println("wrote map.svg")

	// ── Granular: rename a waypoint ───────────────────────────────────
	first := got.Waypoints[0]
	first.Name = "Base Camp"
	if err := store.UpdateWaypoint(ctx, first); err != nil {
		log.Fatalf("update waypoint: %v", err)
	}
	w, err := store.GetWaypoint(ctx, first.ID)
	if err != nil {
		log.Fatalf("get waypoint: %v", err)
	}
	fmt.Println("\nwaypoint updated:")
	printJSON(w)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteMap(ctx, m.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nmap deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
