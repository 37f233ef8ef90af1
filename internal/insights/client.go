// Package insights asks an external language model for a narrative read of the
// attendance data. The call is strictly read-only over directory and ledger
// snapshots and every failure degrades to a fixed user-visible message; no
// error crosses this boundary.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"pastoralpass/internal/directory"
	"pastoralpass/internal/ledger"
)

// Fixed degradation messages, shown verbatim in the UI.
const (
	MsgNoKey   = "API Key do Gemini não configurada. Configure GEMINI_API_KEY para ver insights de IA."
	MsgFailure = "Erro ao comunicar com a Inteligência Artificial. Verifique sua conexão ou chave de API."
	MsgEmpty   = "Não foi possível gerar insights no momento."
)

// Client calls the generative-language service.
type Client struct {
	BaseURL string
	Model   string
	APIKey  string
	Skip    bool
	HTTP    *http.Client

	breaker *gobreaker.CircuitBreaker
}

// New creates a client. Skip short-circuits the network call for dev setups
// without a key, returning canned text instead of the degradation message.
func New(baseURL, model, apiKey string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Model:   model,
		APIKey:  apiKey,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // generation can take a while
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "Insights",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize renders the attendance snapshot into a prompt and returns the
// model's free-text answer, or one of the fixed messages on any failure.
func (c *Client) Summarize(ctx context.Context, students []directory.Student, records []ledger.Record) string {
	if c.Skip {
		return "📊 Modo de demonstração: configure a integração de IA para ver a análise real de presença."
	}
	if c.APIKey == "" {
		return MsgNoKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(students, records)}}}},
	})
	if err != nil {
		return MsgFailure
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("insights service status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		log.Printf("insights request failed: %v", err)
		return MsgFailure
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw.([]byte), &parsed); err != nil {
		return MsgFailure
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return MsgEmpty
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return MsgEmpty
	}
	return text
}

// buildPrompt condenses the snapshots for the model: totals, per-date counts,
// and the name/pastoral roster.
func buildPrompt(students []directory.Student, records []ledger.Record) string {
	perDay := make(map[string]int, len(records))
	for _, r := range records {
		perDay[r.DateString]++
	}
	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var byDate bytes.Buffer
	for i, d := range dates {
		if i > 0 {
			byDate.WriteString(", ")
		}
		fmt.Fprintf(&byDate, "%s: %d", d, perDay[d])
	}

	var roster bytes.Buffer
	for i, s := range students {
		if i > 0 {
			roster.WriteString(", ")
		}
		fmt.Fprintf(&roster, "%s (%s)", s.Name, s.Pastoral)
	}

	return fmt.Sprintf(`Atue como um analista de dados de uma paróquia. Analise os seguintes dados de presença da Catequese/Crisma:

Total de Alunos Matriculados: %d
Total de Registros de Presença: %d
Presença por dia: %s

Lista de Alunos: %s

Por favor, forneça:
1. Uma análise breve da tendência de presença.
2. Identifique qual pastoral parece ter melhor engajamento (baseado na proporção).
3. Sugira uma ação para melhorar a presença se os números estiverem baixos.

Responda em formato Markdown, curto e direto. Use emojis.`,
		len(students), len(records), byDate.String(), roster.String())
}
