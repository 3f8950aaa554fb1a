package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/etp/v1"

// Simplified DTOs for the script
type createSessionResponse struct {
	Data struct {
		SessionId  string `json:"session_id"`
		AiResponse string `json:"ai_response"`
		Stage      string `json:"stage"`
	} `json:"data"`
}

type processMessageRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message"`
}

type processMessageResponse struct {
	Data struct {
		AiResponse      string   `json:"ai_response"`
		Stage           string   `json:"stage"`
		Topic           string   `json:"topic"`
		Requirements    []string `json:"requirements"`
		PendingDecision bool     `json:"pending_decision"`
	} `json:"data"`
}

func main() {
	token := os.Getenv("SIM_ACCESS_TOKEN")
	if token == "" {
		color.Red("SIM_ACCESS_TOKEN is not set (a JWT signed with the server's JWT_SECRET)")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting ETP Authoring Simulation\n")

	sessionId, intro, err := createSession(token)
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}
	color.Green("Session Created: %s", sessionId)
	fmt.Printf("AI: %s\n", intro)

	// Scripted happy path: necessity, one refinement, confirmation, then
	// the topic walk up to the finalized document.
	script := []string{
		"Precisamos contratar serviço de manutenção predial preventiva e corretiva para os três edifícios da sede, incluindo instalações elétricas e hidráulicas.",
		"remover R2",
		"editar R1: Atender integralmente a Lei 14.133/2021 e regulamentos internos",
		"confirmo os requisitos",
		"1",
		"sim, está previsto no PCA",
		"Lei 14.133/2021, art. 75",
		"serão 3 postos de serviço, estimativa de R$ 1,2 milhões por ano",
		"pesquisamos no painel de preços e em três fornecedores",
		"não deve ser parcelado, o objeto é indivisível",
		"pode gerar o documento",
		"ver documento",
		"finalizar",
	}

	for _, text := range script {
		color.Yellow("\nUSER: %s", text)

		start := time.Now()
		res, err := sendMessage(token, sessionId, text)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			os.Exit(1)
		}

		fmt.Printf("AI (%v) [%s/%s]: %s\n", elapsed, res.Data.Stage, res.Data.Topic, res.Data.AiResponse)
		if res.Data.PendingDecision {
			color.Magenta("  (decisão pendente aguardando 1/2/3)")
		}

		time.Sleep(200 * time.Millisecond)
	}

	color.Green("\n✅ Simulation finished")
}

func createSession(token string) (string, string, error) {
	body, _ := json.Marshal(map[string]string{"title": "Manutenção predial - sede"})

	req, _ := http.NewRequest("POST", baseURL+"/sessions", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}

	var res createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", "", err
	}
	return res.Data.SessionId, res.Data.AiResponse, nil
}

func sendMessage(token, sessionId, text string) (*processMessageResponse, error) {
	payload := processMessageRequest{
		SessionId: sessionId,
		Message:   text,
	}
	jsonBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL+"/process-message", bytes.NewBuffer(jsonBytes))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}

	var res processMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
