package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/store"
)

// tinykind-health is a lean sidecar probe: it reports whether the primary
// document on disk exists and still parses, without going through the main
// server. Useful for deployment systems that want a storage-level check.
func main() {
	addr := flag.String("addr", ":8081", "listen address for the health sidecar")
	data := flag.String("data", "./data", "tinykind data directory to inspect")
	ver := flag.String("version", "dev", "version string to return")
	flag.Parse()

	dataFile := filepath.Join(*data, store.DataFileName)

	h := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/health", "/healthz":
			ctx.Response.Header.Set("Content-Type", "application/json")
			status, live := inspect(dataFile)
			if status != "ok" {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			} else {
				ctx.SetStatusCode(fasthttp.StatusOK)
			}
			_, _ = ctx.WriteString(fmt.Sprintf("{\"status\":\"%s\",\"liveMessages\":%d,\"version\":\"%s\"}", status, live, *ver))
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	fmt.Printf("tinykind health sidecar listening on %s (data=%s)\n", *addr, dataFile)
	srv := &fasthttp.Server{
		Handler:            h,
		Name:               "tinykind-health",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Printf("health sidecar exit: %v\n", err)
	}
}

// inspect parses the document file and counts live messages. A missing or
// unparseable file is reported as degraded, never a panic.
func inspect(path string) (status string, live int) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "missing", 0
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "corrupt", 0
	}
	for i := range doc.Messages {
		if doc.Messages[i].Live() {
			live++
		}
	}
	return "ok", live
}
