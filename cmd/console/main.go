package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	orderedNames, tavernMap, err := listTaverns(client, cfg.APIBaseURL)
	if err != nil || len(orderedNames) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list taverns: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Available Taverns:")
	for i := range orderedNames {
		fmt.Printf("  %d - %s (%s)\n", i+1, orderedNames[i], tavernMap[orderedNames[i]])
	}
	fmt.Print("\nSelect a tavern by number: ")

	var choice int
	if _, err := fmt.Scanf("%d\n", &choice); err != nil || choice < 1 || choice > len(orderedNames) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	fmt.Print("Your name, traveler: ")
	reader := bufio.NewReader(os.Stdin)
	playerName, _ := reader.ReadString('\n')
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = "Traveler"
	}

	session, err := createSession(client, cfg.APIBaseURL, tavernMap[orderedNames[choice-1]], playerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, session),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func sortedNames(m map[string]string) []string {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
