// Manual smoke test for the streaming query endpoint.
//
// Usage:
//
//	go run scripts/query_smoke.go <organization-id> "your question"
//
// Requires API_TOKEN in the environment (a valid JWT for an approved
// member of the organization).
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

type streamPayload struct {
	Answer           string          `json:"answer,omitempty"`
	Thinking         *bool           `json:"thinking,omitempty"`
	Sources          json.RawMessage `json:"sources,omitempty"`
	EnhancedSources  json.RawMessage `json:"enhanced_sources,omitempty"`
	Error            string          `json:"error,omitempty"`
	InsufficientInfo *bool           `json:"insufficient_info,omitempty"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run scripts/query_smoke.go <organization-id> <question>")
		os.Exit(1)
	}
	orgId := os.Args[1]
	question := os.Args[2]

	token := os.Getenv("API_TOKEN")
	if token == "" {
		color.Red("API_TOKEN is not set")
		os.Exit(1)
	}

	body, _ := json.Marshal(map[string]string{"question": question})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/query/v1/"+orgId, bytes.NewReader(body))
	if err != nil {
		color.Red("request build failed: %v", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		color.Red("HTTP %d", resp.StatusCode)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
		os.Exit(1)
	}

	color.Cyan("--- streaming ---")

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			color.Cyan("--- done ---")
			break
		}

		var payload streamPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			color.Yellow("unparseable frame: %s", data)
			continue
		}

		switch {
		case payload.Error != "":
			color.Red("error: %s", payload.Error)
		case payload.Thinking != nil && *payload.Thinking:
			color.Yellow("thinking: %s", payload.Answer)
		case len(payload.Sources) > 0:
			color.Green("sources: %s", payload.Sources)
		case len(payload.EnhancedSources) > 0:
			color.Green("enhanced: %s", payload.EnhancedSources)
		case payload.Answer != "":
			fmt.Print(payload.Answer)
			answer.WriteString(payload.Answer)
		}
	}
	if err := scanner.Err(); err != nil {
		color.Red("stream read failed: %v", err)
		os.Exit(1)
	}

	fmt.Println()
	color.Cyan("full answer (%d chars)", answer.Len())
}
