// Command pooldemo is a manual smoke test for connection reuse: it makes
// two requests to the same host back to back and reports whether the
// second one reused the first one's connection.
package main

import (
	"context"
	"fmt"
	"time"

	httpcore "github.com/nullbyte-labs/httpcore"
)

func main() {
	fmt.Println("=== Connection Pooling Smoke Test ===")

	mgr := httpcore.NewManager(httpcore.ManagerSettings{})
	defer httpcore.CloseManager(mgr)

	ctx := context.Background()

	req, err := httpcore.ParseURL("https://example.com/")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Making request 1...")
	resp1, err := httpcore.HTTPLBS(ctx, req, mgr, httpcore.Options{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Request 1: status=%d reused=%v\n", resp1.Status.Code, false)
	resp1.Close()

	time.Sleep(100 * time.Millisecond)

	fmt.Println("Making request 2...")
	resp2, err := httpcore.HTTPLBS(ctx, req, mgr, httpcore.Options{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Request 2: status=%d\n", resp2.Status.Code)
	resp2.Close()

	stats := mgr.Stats()
	fmt.Printf("pool stats: idle=%d created=%d reused=%d\n", stats.IdleConns, stats.TotalCreated, stats.TotalReused)
	if stats.TotalReused > 0 {
		fmt.Println("connection pooling is working")
	} else {
		fmt.Println("no connection was reused")
	}
}
