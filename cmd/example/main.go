package main

import (
	"fmt"
	"log"
	"time"

	"regiontree/pkg/geom"
	"regiontree/pkg/tree"
)

func main() {
	fmt.Println("Creating a quad-tree over [(0, 0) (100, 100)]...")
	t, err := tree.NewMutable[geom.Box, string](geom.Box2(0, 0, 100, 100), 4)
	if err != nil {
		log.Fatalf("Failed to create tree: %v", err)
	}

	parcels := map[string]geom.Box{
		"harbor":    geom.Box2(5, 5, 20, 15),
		"old-town":  geom.Box2(40, 40, 55, 60),
		"station":   geom.Box2(48, 10, 52, 14),
		"park":      geom.Box2(60, 60, 90, 95),
		"bridge":    geom.Box2(20, 45, 60, 50),
		"warehouse": geom.Box2(80, 5, 95, 20),
	}

	start := time.Now()
	for name, b := range parcels {
		if err := t.Insert(b, name); err != nil {
			log.Fatalf("Insert %s failed: %v", name, err)
		}
	}
	fmt.Printf("Inserted %d parcels in %v\n", t.Size(), time.Since(start))

	q := geom.Box2(35, 35, 65, 65)
	fmt.Printf("Parcels intersecting %s:\n", q)
	for e, err := range t.SelectEntrySeq(tree.Intersecting(q)) {
		if err != nil {
			log.Fatalf("Traversal failed: %v", err)
		}
		if e.Key.Intersects(q) {
			fmt.Printf("  %s\n", e)
		}
	}

	fmt.Printf("Parcels fully inside %s: %v\n", q, len(t.SearchWithin(q)))

	removed, err := t.RemoveValue("bridge")
	if err != nil {
		log.Fatalf("Remove failed: %v", err)
	}
	fmt.Printf("Removed %v, %d parcels left\n", removed, t.Size())

	if err := t.CheckIntegrity(); err != nil {
		log.Fatalf("Integrity check failed: %v", err)
	}
	s := t.Stats()
	fmt.Printf("Shape: nodes=%d depth=%d\n", s.Nodes, s.Depth)
}
