package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// parseFoodRequest is the request body for POST /api/intake/parse.
type parseFoodRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

// parsedMeal is one structured meal extracted from free text by the AI.
type parsedMeal struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// generateWorkoutRequest is the request body for POST /api/workouts/generate.
type generateWorkoutRequest struct {
	Days       int      `json:"days"`
	DaysOfWeek []string `json:"days_of_week"`
	FocusAreas []string `json:"focus_areas"`
	Duration   int      `json:"duration"`
	Equipment  []string `json:"equipment"`
	Experience string   `json:"experience"`
}

// generatedWorkoutDay is one day of a generated routine.
type generatedWorkoutDay struct {
	Day       string     `json:"day"`
	FocusArea string     `json:"focus_area"`
	Exercises []exercise `json:"exercises"`
}

/* ─── OpenAI prompt constants ────────────────────────────────────────── */

const foodParsePrompt = `You are a nutrition expert. Parse the following food input and extract meal information.
Return ONLY a valid JSON array of meal objects. Each meal object should have:
- "name": string (the food item name)
- "category": "breakfast" | "lunch" | "dinner" | "snack" (infer from time of day or context, default to "snack" if unclear)
- "calories": number (estimated calories)
- "protein_g": number (grams of protein)
- "carbs_g": number (grams of carbohydrates)
- "fat_g": number (grams of fat)

If multiple items are mentioned, create separate meal objects for each.

Input: "%s"

Return only the JSON array, no other text. Example format:
[{"name": "Grilled chicken breast", "category": "lunch", "calories": 231, "protein_g": 43.5, "carbs_g": 0, "fat_g": 5}]`

const workoutGeneratePrompt = `You are a professional fitness coach. Generate a detailed workout routine based on these specifications:

Workout Days: %d days per week (%s)
Focus Areas: %s
Session Duration: %d minutes per session
Experience Level: %s
%s

Return ONLY a valid JSON array, one object per workout day. Each object should have:
- "day": string (day of week)
- "focus_area": string
- "exercises": array of objects with "name" (string) and "sets" (array of {"reps": number, "weight_kg": number, "completed": false})

Pick sensible rep and weight schemes for the experience level. Return only the JSON array, no other text.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:       "gpt-4o-mini",
		Messages:    messages,
		Temperature: 0,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	// Parse the response to extract choices[0].message.content
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// jsonArrayPattern finds a JSON array embedded in surrounding prose — models
// sometimes wrap the payload in explanation or markdown fences despite the
// prompt.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// extractJSONArray unmarshals the first JSON array found in content into out.
func extractJSONArray(content string, out interface{}) error {
	payload := jsonArrayPattern.FindString(content)
	if payload == "" {
		return fmt.Errorf("no JSON array in response")
	}
	return json.Unmarshal([]byte(payload), out)
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// parseFoodInput handles POST /api/intake/parse. Free-text food description
// goes to the AI; the reply is parsed into structured meals. Any failure
// returns a descriptive error with zero meals — nothing partial is ever
// written, and nothing is written at all here (the client confirms first).
func (h *Handler) parseFoodInput(c *gin.Context) {
	var req parseFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	prompt := fmt.Sprintf(foodParsePrompt, req.Description)
	content, err := callOpenAI(c.Request.Context(), []openAIMessage{
		{Role: "user", Content: prompt},
	}, h.openAIBaseURL)
	if err != nil {
		log.Printf("[parse-food] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "food parsing failed")
		return
	}

	var meals []parsedMeal
	if err := extractJSONArray(content, &meals); err != nil {
		log.Printf("[parse-food] failed to parse AI response: %v", err)
		apiError(c, http.StatusInternalServerError, "food parsing failed")
		return
	}

	// Drop entries the model got structurally wrong rather than storing junk.
	valid := make([]parsedMeal, 0, len(meals))
	for _, m := range meals {
		if m.Name == "" || m.Calories < 0 || !validMealCategories[m.Category] {
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) == 0 {
		c.JSON(http.StatusOK, gin.H{"meals": []parsedMeal{}, "error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meals": valid})
}

// generateWorkout handles POST /api/workouts/generate: asks the AI for a
// routine matching the request and returns the structured days. Failures
// return a descriptive error and zero days.
func (h *Handler) generateWorkout(c *gin.Context) {
	var req generateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Days <= 0 || len(req.FocusAreas) == 0 {
		apiError(c, http.StatusBadRequest, "days and focus_areas are required")
		return
	}
	if req.Experience == "" {
		req.Experience = "intermediate"
	}
	equipmentText := "Using bodyweight and basic equipment"
	if len(req.Equipment) > 0 {
		equipmentText = "Available equipment: " + strings.Join(req.Equipment, ", ")
	}

	prompt := fmt.Sprintf(workoutGeneratePrompt,
		req.Days, strings.Join(req.DaysOfWeek, ", "),
		strings.Join(req.FocusAreas, ", "),
		req.Duration, req.Experience, equipmentText)

	content, err := callOpenAI(c.Request.Context(), []openAIMessage{
		{Role: "user", Content: prompt},
	}, h.openAIBaseURL)
	if err != nil {
		log.Printf("[generate-workout] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "workout generation failed")
		return
	}

	var days []generatedWorkoutDay
	if err := extractJSONArray(content, &days); err != nil {
		log.Printf("[generate-workout] failed to parse AI response: %v", err)
		apiError(c, http.StatusInternalServerError, "workout generation failed")
		return
	}

	valid := make([]generatedWorkoutDay, 0, len(days))
	for _, d := range days {
		if d.Day == "" || len(d.Exercises) == 0 {
			continue
		}
		valid = append(valid, d)
	}

	c.JSON(http.StatusOK, gin.H{"days": valid})
}
