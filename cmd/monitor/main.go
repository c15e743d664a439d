package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// LogEntry matches the Zap JSON structure
type LogEntry struct {
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	PlaneID  string `json:"plane_id"`
	FlightID string `json:"flight_id"`
	TaskType string `json:"task_type"`
	Service  string `json:"service"`
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

func main() {
	fmt.Println(colorCyan + "🛬 Ground Board Activity Monitor Starting..." + colorReset)
	fmt.Println(colorGray + "Listening for plane lifecycle events from the board service..." + colorReset)
	fmt.Println("-------------------------------------------------------------------------")

	// Use docker service logs with follow and tail
	cmd := exec.Command("docker", "service", "logs", "-f", "groundboard_board")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		fmt.Printf("Error creating stdout pipe: %v\n", err)
		return
	}

	if err := cmd.Start(); err != nil {
		fmt.Printf("Error starting docker logs command: %v\n", err)
		return
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()

		// Docker service logs format: "service_name.instance.id | {JSON}"
		parts := strings.SplitN(line, "|", 2)
		if len(parts) < 2 {
			continue
		}

		jsonPayload := strings.TrimSpace(parts[1])

		var entry LogEntry
		if err := json.Unmarshal([]byte(jsonPayload), &entry); err != nil {
			// Not a JSON log or different format, ignore
			continue
		}

		prettify(entry)
	}

	if err := cmd.Wait(); err != nil {
		fmt.Printf("Docker command exited: %v\n", err)
	}
}

func prettify(entry LogEntry) {
	msg := entry.Msg
	planeID := entry.PlaneID

	switch {
	case strings.Contains(msg, "Plane registered"):
		fmt.Printf("🛩  "+colorGreen+"Plane Registered:"+colorReset+" %s (flight %s)\n", planeID, entry.FlightID)
	case strings.Contains(msg, "Refuel task dispatched"):
		fmt.Printf("⛽ "+colorYellow+"Refuel Dispatched:"+colorReset+" %s\n", planeID)
	case strings.Contains(msg, "Received task message"):
		fmt.Printf("📥 "+colorBlue+"Task Received:"+colorReset+"    %s (%s)\n", planeID, entry.TaskType)
	case strings.Contains(msg, "Fuel loaded"):
		fmt.Printf("✅ "+colorGreen+"Fuel Loaded:"+colorReset+"      %s\n", planeID)
	case strings.Contains(msg, "Plane departed"):
		fmt.Printf("🛫 "+colorCyan+"Departed:"+colorReset+"         %s\n", planeID)
	case entry.Level == "error":
		fmt.Printf("❌ " + colorRed + "ERROR: " + colorReset + msg + "\n")
	}
}
