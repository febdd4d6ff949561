package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, local models can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func chat(token, sessionID, message string) {
	resp, body, err := sendRequest("POST", "/assistant/chat", token, map[string]interface{}{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var chatResp map[string]interface{}
	json.Unmarshal(body, &chatResp)
	prettyPrint(chatResp)
}

func main() {
	color.Cyan("Starting Butler API smoke test\n")

	username := os.Getenv("AUTH_USERNAME")
	if username == "" {
		username = "butler"
	}
	password := os.Getenv("AUTH_PASSWORD")
	if password == "" {
		color.Red("AUTH_PASSWORD is not set")
		os.Exit(1)
	}

	// 1. Login
	color.Yellow("\n1. Login")
	resp, body, err := sendRequest("POST", "/auth/login", "", map[string]interface{}{
		"username": username,
		"password": password,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var loginResp map[string]interface{}
	json.Unmarshal(body, &loginResp)
	var token string
	if data, ok := loginResp["data"].(map[string]interface{}); ok {
		if t, ok := data["access_token"].(string); ok {
			token = t
		}
	}
	if token == "" {
		color.Red("No access token in login response")
		prettyPrint(loginResp)
		os.Exit(1)
	}

	sessionID := "smoke-test"

	// 2. Plain chat turn
	color.Yellow("\n2. Plain chat turn")
	chat(token, sessionID, "Good evening. What can you do?")

	// 3. Note commands
	color.Yellow("\n3. Add a note")
	chat(token, sessionID, "/note add The smoke test ran today")

	color.Yellow("\n4. List notes")
	chat(token, sessionID, "/note list")

	// 5. Store and look up the last exchange
	color.Yellow("\n5. Store last exchange")
	chat(token, sessionID, "/store smoke")

	color.Yellow("\n6. Lookup")
	chat(token, sessionID, "/lookup smoke smoke test")

	// 7. Reset
	color.Yellow("\n7. Reset session")
	resp, body, err = sendRequest("POST", "/assistant/reset", token, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Cyan("\nDone.")
}
