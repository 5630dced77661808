// Package main is the obsmap settings popup: a terminal UI that connects
// to a running driver session's bridge and toggles the full-height map.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldnote/obsmap/pkg/bridge"
	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/popup"
)

func main() {
	var (
		addr    string
		session string
	)
	flag.StringVar(&addr, "addr", "", "bridge address (default: from config)")
	flag.StringVar(&session, "session", "", "driver session id (required)")
	flag.Parse()

	if session == "" {
		fmt.Fprintln(os.Stderr, "usage: obsmap-popup -session <id> [-addr host:port]")
		os.Exit(2)
	}

	if addr == "" {
		cfg, err := config.Load("")
		if err != nil {
			log.Fatalf("obsmap-popup: loading config: %v", err)
		}
		addr = cfg.Bridge.ListenAddr
	}

	client := bridge.NewClient("http://"+addr, session)
	p := tea.NewProgram(popup.New(client))
	if _, err := p.Run(); err != nil {
		log.Fatalf("obsmap-popup: %v", err)
	}
}
