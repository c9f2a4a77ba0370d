package banner

import (
	"fmt"

	"github.com/alferrante/tinykind/pkg/config"
)

const banner = `
████████╗██╗███╗   ██╗██╗   ██╗██╗  ██╗██╗███╗   ██╗██████╗
╚══██╔══╝██║████╗  ██║╚██╗ ██╔╝██║ ██╔╝██║████╗  ██║██╔══██╗
   ██║   ██║██╔██╗ ██║ ╚████╔╝ █████╔╝ ██║██╔██╗ ██║██║  ██║
   ██║   ██║██║╚██╗██║  ╚██╔╝  ██╔═██╗ ██║██║╚██╗██║██║  ██║
   ██║   ██║██║ ╚████║   ██║   ██║  ██╗██║██║ ╚████║██████╔╝
   ╚═╝   ╚═╝╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝╚═════╝
`

// PrintWithEff prints the banner using an effective config which provides
// richer context (addr, data dir, config source).
func PrintWithEff(eff config.Effective, version string, backups bool) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Data:     %s\n", eff.DataDir)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)
	fmt.Printf("Backups:  %v\n", backups)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/messages      - Create a note (JSON: senderName, recipientName, body, ...)")
	fmt.Println("GET  /v1/t/{slug}      - Fetch a live note by its share slug")
	fmt.Println("POST /v1/reactions     - React to a note (JSON: slug, emoji)")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/messages' -d '{\"senderName\":\"Ana\",\"recipientName\":\"Bo\",\"recipientContact\":\"bo@example.com\",\"body\":\"thank you!\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/t/<slug>'\n", addr)
	fmt.Println("\n== Production? =================================================")
	fmt.Println("Set a durable data dir (--data) and enable backups (backup.enabled)")
	fmt.Println("Set admin.token to unlock the /v1/admin surface")
}
