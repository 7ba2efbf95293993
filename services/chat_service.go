package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// systemPrompt keeps the assistant on gaming topics. The model is told to
// answer off-topic questions with the OFF_TOPIC sentinel, which we swap for a
// canned reply so the tone stays scripted instead of model-generated.
const systemPrompt = `You are a gaming expert AI assistant for TribeX eSports. Your knowledge is strictly limited to video games, eSports, and gaming culture. Your tone should be enthusiastic and helpful. Format your responses using simple HTML for readability, including <strong> for bolding and <ol>/<ul>/<li> for lists. Do not use markdown. If a user asks about something unrelated to gaming, you MUST reply with only the exact text: "OFF_TOPIC". Do not add any other words or formatting.`

var offTopicReplies = []string{
	"Whoa there, that's offside! I only play in the gaming league.",
	"Error 404: Non-gaming topic detected.",
	"That question just rage-quit my brain — talk gaming, buddy!",
	"That's not in my quest log. Try something about games!",
	"Hold up! My XP doesn't cover non-gaming topics.",
	"You're out of bounds! Let's respawn back to gaming talk.",
	"Invalid move, player! Only gaming topics unlock rewards.",
}

// ChatMessage is one turn of the conversation, client or model side.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// ChatService proxies the community chatbot to the external generative AI
// service. All language generation happens there; this side only carries the
// script (system prompt and off-topic replies).
type ChatService struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewChatService(baseURL, token string) *ChatService {
	return &ChatService{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Chat handles POST /api/chat.
func (s *ChatService) Chat(c *fiber.Ctx) error {
	type Req struct {
		History []ChatMessage `json:"history"`
		Prompt  string        `json:"prompt"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "prompt is required"})
	}

	text, err := s.generate(c.Context(), req.History, req.Prompt)
	if err != nil {
		log.Printf("[CHAT] generation failed: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "chat service unavailable"})
	}

	if strings.TrimSpace(text) == "OFF_TOPIC" {
		text = offTopicReplies[rand.Intn(len(offTopicReplies))]
	}
	return c.JSON(fiber.Map{"reply": text})
}

func (s *ChatService) generate(ctx context.Context, history []ChatMessage, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"system":  systemPrompt,
		"history": history,
		"prompt":  prompt,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/chat", s.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", s.Token)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("AI service non-200 response: %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode AI service response: %w", err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("no response from AI service")
	}
	return out.Text, nil
}
