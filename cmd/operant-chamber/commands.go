package main

import (
	"bufio"
	"io"
	"log"
	"strings"
)

// commandQueue bounds the host commands waiting for the loop.
const commandQueue = 64

// readCommands forwards each non-empty line of r to cmds until EOF.
func readCommands(r io.Reader, cmds chan<- string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmds <- line
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin: %v", err)
	}
}

// queueCommand hands a line from the MQTT callback to the loop without
// blocking the client's router; lines are dropped when the queue is full.
func queueCommand(cmds chan<- string, line string) {
	select {
	case cmds <- line:
	default:
		log.Printf("command queue full, dropped %q", line)
	}
}
